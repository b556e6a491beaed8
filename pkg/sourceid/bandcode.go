package sourceid

import "fmt"

// UnknownCodeError reports a band or source code with no table entry.
type UnknownCodeError struct {
	Kind string
	Code byte
}

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Kind, string(e.Code))
}

// BandCodeForRate returns the band code for a nominal sample rate in samples
// per second. responseLB is the lower bound of the instrument response in
// hertz, used to split broadband from short period instruments at rates of
// 10 sps and above; pass a value <= 0 when unknown, which selects the
// broadband code.
//
// See http://docs.fdsn.org/projects/source-identifiers/en/v1.0/channel-codes.html#band-code
func BandCodeForRate(sampRate, responseLB float64) (byte, error) {
	broadband := responseLB <= 0 || responseLB < 0.1
	switch {
	case sampRate <= 0:
		return 'I', nil
	case sampRate >= 5000:
		return 'J', nil
	case sampRate >= 1000:
		if broadband {
			return 'F', nil
		}
		return 'G', nil
	case sampRate >= 250:
		if broadband {
			return 'C', nil
		}
		return 'D', nil
	case sampRate >= 80:
		if broadband {
			return 'H', nil
		}
		return 'E', nil
	case sampRate >= 10:
		if broadband {
			return 'B', nil
		}
		return 'S', nil
	case sampRate > 1:
		return 'M', nil
	case sampRate > 0.5:
		// the spec is not clear about how far from 1 sps is still L
		return 'L', nil
	case sampRate >= 0.1:
		return 'V', nil
	case sampRate >= 0.01:
		return 'U', nil
	case sampRate >= 0.001:
		return 'W', nil
	case sampRate >= 0.0001:
		return 'R', nil
	case sampRate >= 0.00001:
		return 'P', nil
	case sampRate >= 0.000001:
		return 'T', nil
	default:
		return 'Q', nil
	}
}

// BandCodesForRate returns the broadband band code for the rate plus the
// short period alternative where the table splits on instrument response.
// For rates where no split exists the two codes are equal.
func BandCodesForRate(sampRate float64) (broadband, shortPeriod byte, err error) {
	broadband, err = BandCodeForRate(sampRate, 0.01)
	if err != nil {
		return 0, 0, err
	}
	shortPeriod, err = BandCodeForRate(sampRate, 10)
	if err != nil {
		return 0, 0, err
	}
	return broadband, shortPeriod, nil
}

type bandInfo struct {
	name       string
	rate       string
	responseLB string
}

var bandCodes = map[byte]bandInfo{
	'J': {"General sampling rate", ">= 5000", ""},
	'F': {"General sampling rate", ">= 1000 to < 5000", "< 0.1"},
	'G': {"General sampling rate", ">= 1000 to < 5000", ">= 0.1"},
	'D': {"General sampling rate", ">= 250 to < 1000", ">= 0.1"},
	'C': {"General sampling rate", ">= 250 to < 1000", "< 0.1"},
	'E': {"Extremely Short Period", ">= 80 to < 250", ">= 0.1"},
	'H': {"High Broadband", ">= 80 to < 250", "< 0.1"},
	'B': {"Broadband", ">= 10 to < 80", "< 0.1"},
	'S': {"Short Period", ">= 10 to < 80", ">= 0.1"},
	'M': {"Mid Period", "> 1 to < 10", ""},
	'L': {"Long Period", "~ 1", ""},
	'V': {"Very Long Period", ">= 0.1 to < 1", ""},
	'U': {"Ultra Long Period", ">= 0.01 to < 0.1", ""},
	'W': {"Ultra-ultra Long Period", ">= 0.001 to < 0.01", ""},
	'R': {"Extremely Long Period", ">= 0.0001 to < 0.001", ""},
	'P': {"On the order of 0.1 to 1 day", ">= 0.00001 to < 0.0001", ""},
	'T': {"On the order of 1 to 10 days", ">= 0.000001 to < 0.00001", ""},
	'Q': {"Greater than 10 days", "< 0.000001", ""},
	'I': {"Irregularly sampled", "", ""},
	'O': {"Opaque", "", ""},
}

var sourceCodes = map[byte]string{
	'A': "Tilt Meter",
	'B': "Creep Meter",
	'C': "Calibration Input",
	'D': "Pressure",
	'E': "Electronic Test Point",
	'F': "Magnetometer",
	'G': "Gravimeter",
	'H': "High Gain Seismometer",
	'I': "Humidity",
	'J': "Rotational Sensor",
	'K': "Temperature",
	'L': "Low Gain Seismometer",
	'M': "Mass Position Seismometer",
	'N': "Accelerometer",
	'O': "Water Current",
	'P': "Geophone",
	'Q': "Electric Potential",
	'R': "Rainfall",
	'S': "Linear Strain",
	'T': "Tide",
	'U': "Bolometer",
	'V': "Volumetric Strain",
	'W': "Wind",
	'X': "Derived or Generated Channel",
	'Y': "Non-specific Instrument",
	'Z': "Synthesized Beam",
}

// DescribeBand returns a human readable description of a band code.
func DescribeBand(code byte) (string, error) {
	bc, ok := bandCodes[code]
	if !ok {
		return "", &UnknownCodeError{"band", code}
	}
	out := bc.name
	if bc.rate != "" {
		out += ", " + bc.rate + " Hz"
	}
	if bc.responseLB != "" {
		out += ", response lower bound " + bc.responseLB + " Hz"
	}
	return out, nil
}

// DescribeSource returns a human readable description of a source code.
func DescribeSource(code byte) (string, error) {
	sc, ok := sourceCodes[code]
	if !ok {
		return "", &UnknownCodeError{"source", code}
	}
	return sc, nil
}
