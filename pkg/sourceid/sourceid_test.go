package sourceid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	testCases := []string{
		"FDSN:CO_BIRD_00_H_H_Z",
		"FDSN:XX_ABC__L_H_U",
		"FDSN:IU_ANMO_10_B_H_1",
		"FDSN:XX_STA_00_V_H_Z",
		"FDSN:NET12345_STATION8_LOC_B_H_Z",
	}
	for _, canonical := range testCases {
		t.Run(canonical, func(t *testing.T) {
			sid, err := Parse(canonical)
			require.NoError(t, err)
			assert.Equal(t, canonical, sid.String())

			again, err := Parse(sid.String())
			require.NoError(t, err)
			assert.Equal(t, sid, again)
		})
	}
}

func TestParseFields(t *testing.T) {
	sid, err := Parse("FDSN:CO_BIRD_00_H_H_Z")
	require.NoError(t, err)
	assert.Equal(t, "CO", sid.NetworkCode)
	assert.Equal(t, "BIRD", sid.StationCode)
	assert.Equal(t, "00", sid.LocationCode)
	assert.Equal(t, "H", sid.BandCode)
	assert.Equal(t, "H", sid.SourceCode)
	assert.Equal(t, "Z", sid.SubsourceCode)
}

func TestParseEmptyLocation(t *testing.T) {
	sid, err := Parse("FDSN:XX_ABC__L_H_U")
	require.NoError(t, err)
	assert.Equal(t, "", sid.LocationCode)
	assert.Equal(t, "FDSN:XX_ABC__L_H_U", sid.String())
}

func TestParseMalformed(t *testing.T) {
	testCases := []struct {
		name string
		id   string
	}{
		{"missing scheme", "CO_BIRD_00_H_H_Z"},
		{"wrong scheme", "SEED:CO_BIRD_00_H_H_Z"},
		{"too few fields", "FDSN:CO_BIRD_00_HHZ"},
		{"too many fields", "FDSN:CO_BIRD_00_H_H_Z_Q"},
		{"empty network", "FDSN:_BIRD_00_H_H_Z"},
		{"empty station", "FDSN:CO__00_H_H_Z"},
		{"network too long", "FDSN:NETWORK123_BIRD_00_H_H_Z"},
		{"band too long", "FDSN:CO_BIRD_00_HH_H_Z"},
		{"empty band", "FDSN:CO_BIRD_00__H_Z"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.id)
			require.Error(t, err)
			var malformed *MalformedIdentifierError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestParseAny(t *testing.T) {
	id, err := ParseAny("FDSN:CO")
	require.NoError(t, err)
	assert.Equal(t, NetworkID{"CO"}, id)

	id, err = ParseAny("FDSN:CO_BIRD")
	require.NoError(t, err)
	assert.Equal(t, StationID{"CO", "BIRD"}, id)
	assert.Equal(t, "FDSN:CO_BIRD", id.String())

	id, err = ParseAny("FDSN:CO_BIRD_00_H_H_Z")
	require.NoError(t, err)
	assert.Equal(t, "FDSN:CO_BIRD_00_H_H_Z", id.String())

	_, err = ParseAny("FDSN:CO_BIRD_00")
	assert.Error(t, err)
}

func TestFromNSLC(t *testing.T) {
	sid, err := FromNSLC("CO", "CASEE", "00", "HHZ")
	require.NoError(t, err)
	assert.Equal(t, "FDSN:CO_CASEE_00_H_H_Z", sid.String())

	sid, err = FromNSLC("XX", "STA", "", "B_HN_ZA")
	require.NoError(t, err)
	assert.Equal(t, "B", sid.BandCode)
	assert.Equal(t, "HN", sid.SourceCode)
	assert.Equal(t, "ZA", sid.SubsourceCode)

	_, err = FromNSLC("XX", "STA", "", "HZ")
	assert.Error(t, err)
}

func TestParseNSLC(t *testing.T) {
	sid, err := ParseNSLC("CO.CASEE.00.HHZ", ".")
	require.NoError(t, err)
	assert.Equal(t, "FDSN:CO_CASEE_00_H_H_Z", sid.String())

	_, err = ParseNSLC("CO.CASEE.00", ".")
	assert.Error(t, err)
}

func TestCreateUnknown(t *testing.T) {
	sid := CreateUnknown(20, 0)
	assert.Equal(t, "FDSN:XX_ABC__B_H_U", sid.String())

	sid = CreateUnknown(0.05, 0)
	assert.Equal(t, "U", sid.BandCode)

	sid = CreateUnknown(0, 0)
	assert.Equal(t, "I", sid.BandCode)
}

func TestChannelCode(t *testing.T) {
	sid, err := Parse("FDSN:CO_BIRD_00_H_H_Z")
	require.NoError(t, err)
	assert.Equal(t, "HHZ", sid.ChannelCode())

	sid.SourceCode = "HN"
	assert.Equal(t, "H_HN_Z", sid.ChannelCode())
}

func TestNetworkStation(t *testing.T) {
	sid, err := Parse("FDSN:CO_BIRD_00_H_H_Z")
	require.NoError(t, err)
	assert.Equal(t, "FDSN:CO", sid.Network().String())
	assert.Equal(t, "FDSN:CO_BIRD", sid.Station().String())
}
