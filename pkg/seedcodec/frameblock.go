package seedcodec

import "encoding/binary"

// FrameSize is the byte length of one Steim frame: 16 big-endian 32-bit
// words, the first of which holds the 2-bit control nibbles for the rest.
const FrameSize = 64

const wordsPerFrame = 16

// steimFrame is a single frame under construction.
type steimFrame struct {
	words [wordsPerFrame]uint32
}

// frameBlock accumulates encoded words into a growing list of Steim frames.
// Word 0 of each frame carries the nibbles; words 1 and 2 of the first
// frame hold the integration constants X(0) and X(n).
type frameBlock struct {
	maxFrames  int // zero means unlimited
	version    int
	numSamples int
	frames     []*steimFrame
	cur        *steimFrame
	pos        int
}

func newFrameBlock(maxFrames, version int) *frameBlock {
	return &frameBlock{maxFrames: maxFrames, version: version}
}

// addWord appends one encoded word carrying samples differences with the
// given control nibble. It reports whether the block hit its frame limit;
// the word that triggered the limit is still stored.
func (fb *frameBlock) addWord(word uint32, samples, nibble int) bool {
	if fb.cur == nil {
		fb.cur = &steimFrame{}
		fb.pos = 1
		fb.frames = append(fb.frames, fb.cur)
	}
	fb.cur.words[fb.pos] = word
	fb.cur.words[0] |= uint32(nibble) << uint((wordsPerFrame-1-fb.pos)*2)
	fb.numSamples += samples
	fb.pos++
	if fb.pos >= wordsPerFrame {
		fb.cur = nil
		if fb.maxFrames > 0 && len(fb.frames) >= fb.maxFrames {
			return true
		}
	}
	return false
}

// setXN overwrites the reverse integration constant X(n), used when the
// block fills before all samples were consumed.
func (fb *frameBlock) setXN(v int32) {
	fb.frames[0].words[2] = uint32(v)
}

// pack serializes all frames, 64 bytes each, words big-endian.
func (fb *frameBlock) pack() []byte {
	out := make([]byte, len(fb.frames)*FrameSize)
	for i, f := range fb.frames {
		for w, word := range f.words {
			binary.BigEndian.PutUint32(out[i*FrameSize+4*w:], word)
		}
	}
	return out
}
