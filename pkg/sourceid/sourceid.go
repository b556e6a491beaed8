package sourceid

import (
	"fmt"
	"strings"
)

// Prefix is the URI scheme required on every FDSN source identifier.
const Prefix = "FDSN:"

const sep = "_"

// SourceID identifies a single channel of data in the FDSN source identifier
// scheme, FDSN:NET_STA_LOC_BAND_SOURCE_SUBSOURCE.
//
// See http://docs.fdsn.org/projects/source-identifiers/en/v1.0/
type SourceID struct {
	NetworkCode   string
	StationCode   string
	LocationCode  string
	BandCode      string
	SourceCode    string
	SubsourceCode string
}

// NetworkID identifies a whole network, FDSN:NET.
type NetworkID struct {
	NetworkCode string
}

// StationID identifies a station within a network, FDSN:NET_STA.
type StationID struct {
	NetworkCode string
	StationCode string
}

// ID is implemented by all source identifier forms.
type ID interface {
	fmt.Stringer
}

// MalformedIdentifierError reports an identifier that does not follow the
// FDSN source identifier scheme.
type MalformedIdentifierError struct {
	ID     string
	Reason string
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("malformed source identifier %q: %s", e.ID, e.Reason)
}

// Parse parses a canonical channel-level source identifier. The FDSN: scheme
// prefix and all six fields are required; use ParseAny for the shorter
// network and station forms.
func Parse(id string) (SourceID, error) {
	if !strings.HasPrefix(id, Prefix) {
		return SourceID{}, &MalformedIdentifierError{id, "must start with " + Prefix}
	}
	items := strings.Split(id[len(Prefix):], sep)
	if len(items) != 6 {
		return SourceID{}, &MalformedIdentifierError{id, fmt.Sprintf("expected 6 fields separated by %q, got %d", sep, len(items))}
	}
	sid := SourceID{
		NetworkCode:   items[0],
		StationCode:   items[1],
		LocationCode:  items[2],
		BandCode:      items[3],
		SourceCode:    items[4],
		SubsourceCode: items[5],
	}
	if err := sid.validate(); err != nil {
		return SourceID{}, &MalformedIdentifierError{id, err.Error()}
	}
	return sid, nil
}

// ParseAny parses any of the three identifier forms: network (1 field),
// station (2 fields) or channel (6 fields).
func ParseAny(id string) (ID, error) {
	if !strings.HasPrefix(id, Prefix) {
		return nil, &MalformedIdentifierError{id, "must start with " + Prefix}
	}
	items := strings.Split(id[len(Prefix):], sep)
	switch len(items) {
	case 1:
		return NetworkID{items[0]}, nil
	case 2:
		return StationID{items[0], items[1]}, nil
	case 6:
		return Parse(id)
	}
	return nil, &MalformedIdentifierError{id, fmt.Sprintf("expected 1, 2 or 6 fields separated by %q, got %d", sep, len(items))}
}

func (s SourceID) validate() error {
	switch {
	case s.NetworkCode == "":
		return fmt.Errorf("network code is required")
	case len(s.NetworkCode) > 8:
		return fmt.Errorf("network code longer than 8: %q", s.NetworkCode)
	case s.StationCode == "":
		return fmt.Errorf("station code is required")
	case len(s.StationCode) > 8:
		return fmt.Errorf("station code longer than 8: %q", s.StationCode)
	case len(s.LocationCode) > 8:
		return fmt.Errorf("location code longer than 8: %q", s.LocationCode)
	case s.BandCode == "":
		return fmt.Errorf("band code is required")
	case len(s.BandCode) > 1:
		return fmt.Errorf("band code longer than 1: %q", s.BandCode)
	case s.SourceCode == "":
		return fmt.Errorf("source code is required")
	}
	return nil
}

// FromNSLC synthesizes a source identifier from SEED v2 network, station,
// location and channel codes. A 3 character channel decomposes into band,
// source and subsource; longer channels must use the B_S_SS underscore form.
func FromNSLC(net, sta, loc, channel string) (SourceID, error) {
	var band, source, subsource string
	if len(channel) == 3 {
		band = channel[0:1]
		source = channel[1:2]
		subsource = channel[2:3]
	} else {
		items := strings.Split(channel, sep)
		if len(items) != 3 || items[0] == "" || items[1] == "" {
			return SourceID{}, &MalformedIdentifierError{channel, "channel code must be length 3 or have 3 fields separated by " + sep}
		}
		band, source, subsource = items[0], items[1], items[2]
	}
	return SourceID{
		NetworkCode:   net,
		StationCode:   sta,
		LocationCode:  loc,
		BandCode:      band,
		SourceCode:    source,
		SubsourceCode: subsource,
	}, nil
}

// ParseNSLC parses a dotted NET.STA.LOC.CHA style code, with fieldSep as
// the separator between the four fields.
func ParseNSLC(nslc, fieldSep string) (SourceID, error) {
	items := strings.Split(nslc, fieldSep)
	if len(items) < 4 {
		return SourceID{}, &MalformedIdentifierError{nslc, fmt.Sprintf("expected 4 fields separated by %q", fieldSep)}
	}
	return FromNSLC(items[0], items[1], items[2], items[3])
}

// CreateUnknown returns a placeholder identifier for data whose origin is
// not known, FDSN:XX_ABC__<band>_H_U, with the band code derived from the
// sample rate. Pass responseLB <= 0 when the response lower bound is
// unknown.
func CreateUnknown(sampRate, responseLB float64) SourceID {
	band, err := BandCodeForRate(sampRate, responseLB)
	if err != nil {
		band = 'I'
	}
	return SourceID{
		NetworkCode:   "XX",
		StationCode:   "ABC",
		LocationCode:  "",
		BandCode:      string(band),
		SourceCode:    "H",
		SubsourceCode: "U",
	}
}

// ChannelCode returns the SEED style channel code. Single character band,
// source and subsource join directly; anything longer uses the underscore
// form.
func (s SourceID) ChannelCode() string {
	if len(s.BandCode) == 1 && len(s.SourceCode) == 1 && len(s.SubsourceCode) == 1 {
		return s.BandCode + s.SourceCode + s.SubsourceCode
	}
	return s.BandCode + sep + s.SourceCode + sep + s.SubsourceCode
}

// Network returns the network-level identifier for this channel.
func (s SourceID) Network() NetworkID {
	return NetworkID{s.NetworkCode}
}

// Station returns the station-level identifier for this channel.
func (s SourceID) Station() StationID {
	return StationID{s.NetworkCode, s.StationCode}
}

func (s SourceID) String() string {
	return Prefix + strings.Join([]string{
		s.NetworkCode, s.StationCode, s.LocationCode,
		s.BandCode, s.SourceCode, s.SubsourceCode,
	}, sep)
}

func (n NetworkID) String() string {
	return Prefix + n.NetworkCode
}

func (s StationID) String() string {
	return Prefix + s.NetworkCode + sep + s.StationCode
}
