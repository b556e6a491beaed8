// Package seedcodec encodes and decodes miniSEED data payloads: the
// primitive integer and float encodings plus the Steim-1 and Steim-2
// difference compression schemes.
package seedcodec

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Payload encoding IDs per SEED blockette 1000 and the miniSEED 3
// specification.
const (
	Text    uint8 = 0
	Int16   uint8 = 1
	Int24   uint8 = 2
	Int32   uint8 = 3
	Float32 uint8 = 4
	Float64 uint8 = 5
	Steim1  uint8 = 10
	Steim2  uint8 = 11
	Steim3  uint8 = 19
)

// CodecError reports structurally bad payload bytes.
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}

func codecErrorf(format string, args ...interface{}) *CodecError {
	return &CodecError{fmt.Sprintf(format, args...)}
}

// UnsupportedEncodingError reports an encoding this library cannot decode.
type UnsupportedEncodingError struct {
	Encoding uint8
}

func (e *UnsupportedEncodingError) Error() string {
	return fmt.Sprintf("unsupported encoding %d (%s)", e.Encoding, EncodingName(e.Encoding))
}

// SteimIntegrityError reports a decoded final sample that does not match
// the reverse integration constant X(n) stored in the first frame.
type SteimIntegrityError struct {
	Decoded int32
	XN      int32
}

func (e *SteimIntegrityError) Error() string {
	return fmt.Sprintf("steim: last decoded sample %d does not match X(n) %d", e.Decoded, e.XN)
}

// SteimRangeError reports a sample difference too wide for the target
// Steim packing.
type SteimRangeError struct {
	Diff int64
	Bits int
}

func (e *SteimRangeError) Error() string {
	return fmt.Sprintf("steim: difference %d exceeds %d bits", e.Diff, e.Bits)
}

// EncodingName returns a short name for the payload encoding.
func EncodingName(encoding uint8) string {
	switch encoding {
	case Text:
		return "Text"
	case Int16:
		return "16-bit Integer"
	case Int24:
		return "24-bit Integer"
	case Int32:
		return "32-bit Integer"
	case Float32:
		return "32-bit Float (IEEE float)"
	case Float64:
		return "64-bit Float (IEEE double)"
	case Steim1:
		return "STEIM-1 Integer Compression"
	case Steim2:
		return "STEIM-2 Integer Compression"
	case Steim3:
		return "STEIM-3 Integer Compression"
	default:
		return fmt.Sprintf("unknown (%d)", encoding)
	}
}

// CanDecode reports whether the encoding is decodable by this package.
func CanDecode(encoding uint8) bool {
	switch encoding {
	case Int16, Int32, Float32, Float64, Steim1, Steim2:
		return true
	}
	return false
}

// IsPrimitive reports whether the encoding stores fixed width samples with
// no compression.
func IsPrimitive(encoding uint8) bool {
	switch encoding {
	case Int16, Int32, Float32, Float64:
		return true
	}
	return false
}

// SampleWidth returns the byte width of one sample for primitive encodings,
// zero otherwise.
func SampleWidth(encoding uint8) int {
	switch encoding {
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	}
	return 0
}

// EncodedSegment holds an encoded payload together with the facts needed to
// decode it, independent of any record framing.
type EncodedSegment struct {
	Encoding     uint8
	Data         []byte
	NumSamples   int
	LittleEndian bool
}

// Decode decodes the segment into samples.
func (s EncodedSegment) Decode() (*Samples, error) {
	return Decode(s.Encoding, s.Data, s.NumSamples, s.LittleEndian)
}

// Samples holds decoded samples in the fixed width type native to their
// encoding. Exactly one of the typed slices is populated.
type Samples struct {
	encoding uint8
	i16      []int16
	i32      []int32
	f32      []float32
	f64      []float64
	text     []byte
}

// NewInt16Samples wraps a slice of 16 bit samples.
func NewInt16Samples(v []int16) *Samples { return &Samples{encoding: Int16, i16: v} }

// NewInt32Samples wraps a slice of 32 bit samples.
func NewInt32Samples(v []int32) *Samples { return &Samples{encoding: Int32, i32: v} }

// NewFloat32Samples wraps a slice of 32 bit float samples.
func NewFloat32Samples(v []float32) *Samples { return &Samples{encoding: Float32, f32: v} }

// NewFloat64Samples wraps a slice of 64 bit float samples.
func NewFloat64Samples(v []float64) *Samples { return &Samples{encoding: Float64, f64: v} }

// NewTextSamples wraps text payload bytes.
func NewTextSamples(v []byte) *Samples { return &Samples{encoding: Text, text: v} }

// Encoding returns the primitive encoding of the held samples.
func (s *Samples) Encoding() uint8 { return s.encoding }

// Len returns the number of samples, or the byte length for text.
func (s *Samples) Len() int {
	switch s.encoding {
	case Int16:
		return len(s.i16)
	case Int32:
		return len(s.i32)
	case Float32:
		return len(s.f32)
	case Float64:
		return len(s.f64)
	case Text:
		return len(s.text)
	}
	return 0
}

// Int16s returns the underlying slice for Int16 samples, nil otherwise.
func (s *Samples) Int16s() []int16 { return s.i16 }

// Int32s returns the underlying slice for Int32 samples, nil otherwise.
func (s *Samples) Int32s() []int32 { return s.i32 }

// Float32s returns the underlying slice for Float32 samples, nil otherwise.
func (s *Samples) Float32s() []float32 { return s.f32 }

// Float64s returns the underlying slice for Float64 samples, nil otherwise.
func (s *Samples) Float64s() []float64 { return s.f64 }

// Text returns the payload for Text samples, nil otherwise.
func (s *Samples) Text() []byte { return s.text }

// Int32Values converts any integer samples to int32, widening 16 bit
// values. Float samples are not convertible.
func (s *Samples) Int32Values() ([]int32, error) {
	switch s.encoding {
	case Int32:
		return s.i32, nil
	case Int16:
		out := make([]int32, len(s.i16))
		for i, v := range s.i16 {
			out[i] = int32(v)
		}
		return out, nil
	}
	return nil, codecErrorf("samples of encoding %s are not integer valued", EncodingName(s.encoding))
}

// Float64Values converts any numeric samples to float64.
func (s *Samples) Float64Values() ([]float64, error) {
	switch s.encoding {
	case Float64:
		return s.f64, nil
	case Float32:
		out := make([]float64, len(s.f32))
		for i, v := range s.f32 {
			out[i] = float64(v)
		}
		return out, nil
	case Int16:
		out := make([]float64, len(s.i16))
		for i, v := range s.i16 {
			out[i] = float64(v)
		}
		return out, nil
	case Int32:
		out := make([]float64, len(s.i32))
		for i, v := range s.i32 {
			out[i] = float64(v)
		}
		return out, nil
	}
	return nil, codecErrorf("samples of encoding %s are not numeric", EncodingName(s.encoding))
}

// Encode serializes the samples in their native primitive encoding.
func (s *Samples) Encode(littleEndian bool) (EncodedSegment, error) {
	switch s.encoding {
	case Int16:
		return EncodeInt16(s.i16, littleEndian), nil
	case Int32:
		return EncodeInt32(s.i32, littleEndian), nil
	case Float32:
		return EncodeFloat32(s.f32, littleEndian), nil
	case Float64:
		return EncodeFloat64(s.f64, littleEndian), nil
	case Text:
		return EncodedSegment{Text, s.text, len(s.text), littleEndian}, nil
	}
	return EncodedSegment{}, &UnsupportedEncodingError{s.encoding}
}

func byteOrder(littleEndian bool) binary.ByteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Decode decodes numSamples samples from data. littleEndian applies to the
// primitive encodings; Steim frames are big-endian regardless.
func Decode(encoding uint8, data []byte, numSamples int, littleEndian bool) (*Samples, error) {
	if numSamples == 0 {
		return NewInt32Samples(nil), nil
	}
	bo := byteOrder(littleEndian)
	switch encoding {
	case Text:
		return NewTextSamples(data), nil
	case Int16:
		if len(data) < 2*numSamples {
			return nil, codecErrorf("not enough bytes for %d 16-bit samples, only %d", numSamples, len(data))
		}
		out := make([]int16, numSamples)
		for i := range out {
			out[i] = int16(bo.Uint16(data[2*i:]))
		}
		return NewInt16Samples(out), nil
	case Int32:
		if len(data) < 4*numSamples {
			return nil, codecErrorf("not enough bytes for %d 32-bit samples, only %d", numSamples, len(data))
		}
		out := make([]int32, numSamples)
		for i := range out {
			out[i] = int32(bo.Uint32(data[4*i:]))
		}
		return NewInt32Samples(out), nil
	case Float32:
		if len(data) < 4*numSamples {
			return nil, codecErrorf("not enough bytes for %d 32-bit samples, only %d", numSamples, len(data))
		}
		out := make([]float32, numSamples)
		for i := range out {
			out[i] = math.Float32frombits(bo.Uint32(data[4*i:]))
		}
		return NewFloat32Samples(out), nil
	case Float64:
		if len(data) < 8*numSamples {
			return nil, codecErrorf("not enough bytes for %d 64-bit samples, only %d", numSamples, len(data))
		}
		out := make([]float64, numSamples)
		for i := range out {
			out[i] = math.Float64frombits(bo.Uint64(data[8*i:]))
		}
		return NewFloat64Samples(out), nil
	case Steim1:
		vals, err := DecodeSteim1(data, numSamples)
		if err != nil {
			return nil, err
		}
		return NewInt32Samples(vals), nil
	case Steim2:
		vals, err := DecodeSteim2(data, numSamples)
		if err != nil {
			return nil, err
		}
		return NewInt32Samples(vals), nil
	}
	return nil, &UnsupportedEncodingError{encoding}
}

// EncodeInt16 serializes 16 bit samples.
func EncodeInt16(vals []int16, littleEndian bool) EncodedSegment {
	bo := byteOrder(littleEndian)
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		bo.PutUint16(out[2*i:], uint16(v))
	}
	return EncodedSegment{Int16, out, len(vals), littleEndian}
}

// EncodeInt32 serializes 32 bit samples.
func EncodeInt32(vals []int32, littleEndian bool) EncodedSegment {
	bo := byteOrder(littleEndian)
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		bo.PutUint32(out[4*i:], uint32(v))
	}
	return EncodedSegment{Int32, out, len(vals), littleEndian}
}

// EncodeFloat32 serializes 32 bit float samples.
func EncodeFloat32(vals []float32, littleEndian bool) EncodedSegment {
	bo := byteOrder(littleEndian)
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		bo.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return EncodedSegment{Float32, out, len(vals), littleEndian}
}

// EncodeFloat64 serializes 64 bit float samples.
func EncodeFloat64(vals []float64, littleEndian bool) EncodedSegment {
	bo := byteOrder(littleEndian)
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		bo.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return EncodedSegment{Float64, out, len(vals), littleEndian}
}

// ByteSwap reverses the byte order of each sample of a primitive encoded
// payload in place. Swapping twice is the identity.
func ByteSwap(encoding uint8, data []byte) error {
	width := SampleWidth(encoding)
	if width == 0 {
		return &UnsupportedEncodingError{encoding}
	}
	if len(data)%width != 0 {
		return codecErrorf("payload length %d is not a multiple of sample width %d", len(data), width)
	}
	for off := 0; off < len(data); off += width {
		for i, j := off, off+width-1; i < j; i, j = i+1, j-1 {
			data[i], data[j] = data[j], data[i]
		}
	}
	return nil
}
