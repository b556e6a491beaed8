package seedcodec

import (
	"encoding/binary"
	"math"
)

// steimAccum integrates first-order differences back into samples. The
// very first difference is the carry from X(0), so the first decoded sample
// equals X(0) itself.
type steimAccum struct {
	samples []int32
	want    int
	x0      int32
	last    int32
}

func (a *steimAccum) full() bool {
	return len(a.samples) >= a.want
}

func (a *steimAccum) push(diff int32) {
	if a.full() {
		return
	}
	if len(a.samples) == 0 {
		a.last = a.x0 - diff
	}
	v := a.last + diff
	a.samples = append(a.samples, v)
	a.last = v
}

func (a *steimAccum) finish(xn int32) ([]int32, error) {
	if len(a.samples) != a.want {
		return nil, codecErrorf("steim: decoded %d samples, header says %d", len(a.samples), a.want)
	}
	if a.last != xn {
		return nil, &SteimIntegrityError{Decoded: a.last, XN: xn}
	}
	return a.samples, nil
}

// DecodeSteim1 decodes numSamples from Steim-1 compressed frames. The frame
// words are big-endian per the SEED convention.
func DecodeSteim1(data []byte, numSamples int) ([]int32, error) {
	if len(data)%FrameSize != 0 {
		return nil, codecErrorf("steim1: encoded length %d is not a multiple of %d", len(data), FrameSize)
	}
	numFrames := len(data) / FrameSize

	acc := steimAccum{samples: make([]int32, 0, numSamples), want: numSamples}
	var xn int32
	for f := 0; f < numFrames && !acc.full(); f++ {
		frame := data[f*FrameSize : (f+1)*FrameSize]
		nibbles := binary.BigEndian.Uint32(frame[0:4])
		firstData := 1
		if f == 0 {
			acc.x0 = int32(binary.BigEndian.Uint32(frame[4:8]))
			xn = int32(binary.BigEndian.Uint32(frame[8:12]))
			firstData = 3
		}
		for w := firstData; w < wordsPerFrame && !acc.full(); w++ {
			word := frame[4*w : 4*w+4]
			switch nibbles >> uint((wordsPerFrame-1-w)*2) & 0x3 {
			case 0:
				// non-data
			case 1:
				for k := 0; k < 4; k++ {
					acc.push(int32(int8(word[k])))
				}
			case 2:
				acc.push(int32(int16(binary.BigEndian.Uint16(word[0:2]))))
				acc.push(int32(int16(binary.BigEndian.Uint16(word[2:4]))))
			case 3:
				acc.push(int32(binary.BigEndian.Uint32(word)))
			}
		}
	}
	return acc.finish(xn)
}

// EncodeSteim1 encodes samples as Steim-1 frames, using as many frames as
// needed. Frame words are emitted big-endian.
func EncodeSteim1(samples []int32) ([]byte, error) {
	fb, err := encodeSteim1Block(samples, 0)
	if err != nil {
		return nil, err
	}
	return fb.pack(), nil
}

// EncodeSteim1Frames encodes into at most maxFrames frames and reports how
// many samples were consumed; the rest belong in a following block.
func EncodeSteim1Frames(samples []int32, maxFrames int) ([]byte, int, error) {
	fb, err := encodeSteim1Block(samples, maxFrames)
	if err != nil {
		return nil, 0, err
	}
	return fb.pack(), fb.numSamples, nil
}

func encodeSteim1Block(samples []int32, maxFrames int) (*frameBlock, error) {
	if len(samples) == 0 {
		return nil, codecErrorf("steim1: no samples to encode")
	}
	fb := newFrameBlock(maxFrames, 1)
	fb.addWord(uint32(samples[0]), 0, 0)              // X(0)
	fb.addWord(uint32(samples[len(samples)-1]), 0, 0) // X(n)

	var diff [4]int32
	idx := 0
	for idx < len(samples) {
		// look at up to four differences and find how many fit a word
		diffCount := 0
		maxSize := 0
		for i := 0; i < 4 && idx+i < len(samples); i++ {
			if idx+i == 0 {
				// d(0) = x(0) - x(-1) with zero bias
				diff[0] = samples[0]
			} else {
				wide := int64(samples[idx+i]) - int64(samples[idx+i-1])
				if wide > math.MaxInt32 || wide < math.MinInt32 {
					return nil, &SteimRangeError{Diff: wide, Bits: 32}
				}
				diff[i] = int32(wide)
			}
			diffCount++
			curSize := 4
			switch d := diff[i]; {
			case d >= -128 && d <= 127:
				curSize = 1
			case d >= -32768 && d <= 32767:
				curSize = 2
			}
			if curSize > maxSize {
				maxSize = curSize
			}
			if maxSize*diffCount == 4 {
				break
			}
			if maxSize*diffCount > 4 {
				diffCount--
				if diffCount == 3 {
					diffCount--
				}
				break
			}
		}
		// three one-byte differences cannot fill a word, emit two now
		if diffCount == 3 {
			diffCount = 2
		}

		var word uint32
		var nibble int
		switch diffCount {
		case 1:
			word = uint32(diff[0])
			nibble = 3
		case 2:
			word = (uint32(diff[0])&0xFFFF)<<16 | uint32(diff[1])&0xFFFF
			nibble = 2
		default:
			word = (uint32(diff[0])&0xFF)<<24 | (uint32(diff[1])&0xFF)<<16 |
				(uint32(diff[2])&0xFF)<<8 | uint32(diff[3])&0xFF
			nibble = 1
		}

		if fb.addWord(word, diffCount, nibble) {
			// block filled early, reset X(n) to the last value stored
			fb.setXN(samples[idx+diffCount-1])
			break
		}
		idx += diffCount
	}
	return fb, nil
}
