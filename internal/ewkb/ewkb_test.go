package ewkb

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecode_LittleEndianNoSRID(t *testing.T) {
	// 120.0 / 30.0 encoded little-endian with no SRID flag.
	p, err := Decode("01010000000000000000005e400000000000003e40")
	require.NoError(t, err)

	assert.Equal(t, 120.0, p.Longitude)
	assert.Equal(t, 30.0, p.Latitude)
	assert.Equal(t, DefaultSRID, p.SRID)
}

func TestDecode_LittleEndianEmbeddedSRID(t *testing.T) {
	// Same point with bit 29 set and SRID 4326 embedded (e6100000 LE).
	p, err := Decode("0101000020e61000000000000000005e400000000000003e40")
	require.NoError(t, err)

	assert.Equal(t, 120.0, p.Longitude)
	assert.Equal(t, 30.0, p.Latitude)
	assert.Equal(t, uint32(4326), p.SRID)
}

func TestDecode_BigEndian(t *testing.T) {
	p, err := Decode("0000000001405e0000000000004042800000000000")
	require.NoError(t, err)

	assert.Equal(t, 120.0, p.Longitude)
	assert.Equal(t, 37.0, p.Latitude)
	assert.Equal(t, DefaultSRID, p.SRID)
}

func TestDecode_BigEndianEmbeddedSRID(t *testing.T) {
	// SRID 3857 = 0x00000f11, flag bit set on the type word.
	p, err := Decode("002000000100000f11405e0000000000004042800000000000")
	require.NoError(t, err)

	assert.Equal(t, 120.0, p.Longitude)
	assert.Equal(t, 37.0, p.Latitude)
	assert.Equal(t, uint32(3857), p.SRID)
}

func TestDecode_HexCaseInsensitive(t *testing.T) {
	lower, err := Decode("0101000020e61000000000000000005e400000000000003e40")
	require.NoError(t, err)
	upper, err := Decode("0101000020E61000000000000000005E400000000000003E40")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
}

func TestDecode_TypeCodeNotValidated(t *testing.T) {
	// A multipoint-ish type word is accepted as long as the payload fits;
	// this decoder is point-only by contract, not by rejection.
	p, err := Decode("01040000000000000000005e400000000000003e40")
	require.NoError(t, err)
	assert.Equal(t, 120.0, p.Longitude)
}

func TestDecode_Malformed(t *testing.T) {
	valid := "01010000000000000000005e400000000000003e40"

	cases := map[string]string{
		"empty":               "",
		"odd length":          valid[:len(valid)-1],
		"non-hex characters":  "zz" + valid[2:],
		"order byte only":     "01",
		"header only":         "0101000000",
		"truncated payload":   valid[:len(valid)-2],
		"unknown order flag":  "02" + valid[2:],
		"srid flag truncated": "0101000020e61000000000000000005e40000000000000",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := Decode(input)
			require.ErrorIs(t, err, ErrMalformedInput)
			assert.Zero(t, p, "a failed decode must never return a partial point")
		})
	}
}

func TestEncode_MatchesKnownLayout(t *testing.T) {
	hexStr := Encode(Point{Longitude: 120.0, Latitude: 30.0}, LittleEndian, false)
	assert.Equal(t, "01010000000000000000005e400000000000003e40", strings.ToLower(hexStr))
}

func TestRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := Point{
			Longitude: rapid.Float64().Draw(t, "longitude"),
			Latitude:  rapid.Float64().Draw(t, "latitude"),
			SRID:      rapid.Uint32().Draw(t, "srid"),
		}
		order := LittleEndian
		if rapid.Bool().Draw(t, "bigEndian") {
			order = BigEndian
		}
		withSRID := rapid.Bool().Draw(t, "withSRID")

		decoded, err := Decode(Encode(original, order, withSRID))
		if err != nil {
			t.Fatalf("round trip failed: %v", err)
		}

		// Bit-for-bit float equality, so NaN payloads survive too.
		if math.Float64bits(decoded.Longitude) != math.Float64bits(original.Longitude) {
			t.Fatalf("longitude changed: %v -> %v", original.Longitude, decoded.Longitude)
		}
		if math.Float64bits(decoded.Latitude) != math.Float64bits(original.Latitude) {
			t.Fatalf("latitude changed: %v -> %v", original.Latitude, decoded.Latitude)
		}

		if withSRID && decoded.SRID != original.SRID {
			t.Fatalf("srid changed: %d -> %d", original.SRID, decoded.SRID)
		}
		if !withSRID && decoded.SRID != DefaultSRID {
			t.Fatalf("srid should default to %d, got %d", DefaultSRID, decoded.SRID)
		}
	})
}
