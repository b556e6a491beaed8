package seedcodec

import "encoding/binary"

// Steim-2 packings, keyed by the bit width of one difference. The nibble
// selects the coarse class, the dnib in the top two bits of the word
// selects within it.
type steim2Packing struct {
	diffCount  int
	bitSize    int
	headerSize int // unused bits at the top of the word
	nibble     int
	dnib       int
}

var steim2Packings = map[int]steim2Packing{
	4:  {diffCount: 7, bitSize: 4, headerSize: 4, nibble: 3, dnib: 2},
	5:  {diffCount: 6, bitSize: 5, headerSize: 2, nibble: 3, dnib: 1},
	6:  {diffCount: 5, bitSize: 6, headerSize: 2, nibble: 3, dnib: 0},
	8:  {diffCount: 4, bitSize: 8, headerSize: 0, nibble: 1, dnib: 0},
	10: {diffCount: 3, bitSize: 10, headerSize: 2, nibble: 2, dnib: 3},
	15: {diffCount: 2, bitSize: 15, headerSize: 2, nibble: 2, dnib: 2},
	30: {diffCount: 1, bitSize: 30, headerSize: 2, nibble: 2, dnib: 1},
}

// DecodeSteim2 decodes numSamples from Steim-2 compressed frames. The frame
// words are big-endian per the SEED convention.
func DecodeSteim2(data []byte, numSamples int) ([]int32, error) {
	if len(data)%FrameSize != 0 {
		return nil, codecErrorf("steim2: encoded length %d is not a multiple of %d", len(data), FrameSize)
	}
	numFrames := len(data) / FrameSize

	acc := steimAccum{samples: make([]int32, 0, numSamples), want: numSamples}
	var xn int32
	for f := 0; f < numFrames && !acc.full(); f++ {
		frame := data[f*FrameSize : (f+1)*FrameSize]
		nibbles := binary.BigEndian.Uint32(frame[0:4])
		if nibbles>>30 != 0 {
			return nil, codecErrorf("steim2: frame %d control word does not start with nibble 00", f)
		}
		firstData := 1
		if f == 0 {
			acc.x0 = int32(binary.BigEndian.Uint32(frame[4:8]))
			xn = int32(binary.BigEndian.Uint32(frame[8:12]))
			firstData = 3
		}
		for w := firstData; w < wordsPerFrame && !acc.full(); w++ {
			word := binary.BigEndian.Uint32(frame[4*w : 4*w+4])
			nibble := nibbles >> uint((wordsPerFrame-1-w)*2) & 0x3
			if err := decodeSteim2Word(&acc, nibble, word, f, w); err != nil {
				return nil, err
			}
		}
	}
	return acc.finish(xn)
}

func decodeSteim2Word(acc *steimAccum, nibble uint32, word uint32, frame, w int) error {
	switch nibble {
	case 0:
		// non-data
		return nil
	case 1:
		for k := 0; k < 4; k++ {
			acc.push(int32(int8(word >> uint(24-8*k))))
		}
		return nil
	}

	dnib := int(word >> 30)
	var diffCount, bitSize, headerSize int
	switch {
	case nibble == 2 && dnib == 1:
		diffCount, bitSize, headerSize = 1, 30, 2
	case nibble == 2 && dnib == 2:
		diffCount, bitSize, headerSize = 2, 15, 2
	case nibble == 2 && dnib == 3:
		diffCount, bitSize, headerSize = 3, 10, 2
	case nibble == 3 && dnib == 0:
		diffCount, bitSize, headerSize = 5, 6, 2
	case nibble == 3 && dnib == 1:
		diffCount, bitSize, headerSize = 6, 5, 2
	case nibble == 3 && dnib == 2:
		diffCount, bitSize, headerSize = 7, 4, 4
	case nibble == 3 && dnib == 3:
		// reserved, treat as non-data
		return nil
	default:
		return codecErrorf("steim2: invalid nibble %d dnib %d in frame %d word %d", nibble, dnib, frame, w)
	}
	for d := 0; d < diffCount; d++ {
		shifted := int32(word << uint(headerSize+d*bitSize))
		acc.push(shifted >> uint((diffCount-1)*bitSize+headerSize))
	}
	return nil
}

// EncodeSteim2 encodes samples as Steim-2 frames, using as many frames as
// needed. Frame words are emitted big-endian.
func EncodeSteim2(samples []int32) ([]byte, error) {
	fb, err := encodeSteim2Block(samples, 0)
	if err != nil {
		return nil, err
	}
	return fb.pack(), nil
}

// EncodeSteim2Frames encodes into at most maxFrames frames and reports how
// many samples were consumed; the rest belong in a following block.
func EncodeSteim2Frames(samples []int32, maxFrames int) ([]byte, int, error) {
	fb, err := encodeSteim2Block(samples, maxFrames)
	if err != nil {
		return nil, 0, err
	}
	return fb.pack(), fb.numSamples, nil
}

func encodeSteim2Block(samples []int32, maxFrames int) (*frameBlock, error) {
	if len(samples) == 0 {
		return nil, codecErrorf("steim2: no samples to encode")
	}
	fb := newFrameBlock(maxFrames, 2)
	fb.addWord(uint32(samples[0]), 0, 0)              // X(0)
	fb.addWord(uint32(samples[len(samples)-1]), 0, 0) // X(n)

	var diff [7]int32
	var minbits [7]int
	idx := 0
	for idx < len(samples) {
		remaining := 0
		for i := 0; i < 7 && idx+i < len(samples); i++ {
			if idx+i == 0 {
				// d(0) = x(0) - x(-1) with zero bias
				diff[0] = samples[0]
			} else {
				diff[i] = samples[idx+i] - samples[idx+i-1]
			}
			minbits[i] = minBitsNeeded(diff[i])
			remaining++
		}

		nbits := bitsForPack(minbits[:], remaining)
		if nbits > 30 {
			return nil, &SteimRangeError{Diff: int64(diff[0]), Bits: 30}
		}
		p := steim2Packings[nbits]

		var word uint32
		mask := uint32(1)<<uint(p.bitSize) - 1
		for d := 0; d < p.diffCount; d++ {
			word = word<<uint(p.bitSize) | uint32(diff[d])&mask
		}
		if p.nibble != 1 {
			word |= uint32(p.dnib) << 30
		}

		if fb.addWord(word, p.diffCount, p.nibble) {
			// block filled early, reset X(n) to the last value stored
			fb.setXN(samples[idx+p.diffCount-1])
			break
		}
		idx += p.diffCount
	}
	return fb, nil
}

func minBitsNeeded(diff int32) int {
	switch {
	case diff >= -8 && diff < 8:
		return 4
	case diff >= -16 && diff < 16:
		return 5
	case diff >= -32 && diff < 32:
		return 6
	case diff >= -128 && diff < 128:
		return 8
	case diff >= -512 && diff < 512:
		return 10
	case diff >= -16384 && diff < 16384:
		return 15
	case diff >= -536870912 && diff < 536870912:
		return 30
	}
	return 32
}

// bitsForPack picks the narrowest width whose full complement of
// differences all fit, preferring more samples per word.
func bitsForPack(minbits []int, remaining int) int {
	fits := func(count, width int) bool {
		if remaining < count {
			return false
		}
		for i := 0; i < count; i++ {
			if minbits[i] > width {
				return false
			}
		}
		return true
	}
	switch {
	case fits(7, 4):
		return 4
	case fits(6, 5):
		return 5
	case fits(5, 6):
		return 6
	case fits(4, 8):
		return 8
	case fits(3, 10):
		return 10
	case fits(2, 15):
		return 15
	case fits(1, 30):
		return 30
	}
	return 32
}
