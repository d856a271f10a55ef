// Package ewkb decodes the Extended Well-Known Binary point encoding used by
// upstream data sources to ship entity positions.
//
// The codec is deliberately narrow: it reads exactly one point geometry
// (byte-order flag, type word with an optional embedded SRID, longitude,
// latitude) and nothing else. Multipoint, line and polygon variants are out of
// contract and the geometry type word is not validated beyond its SRID flag.
package ewkb

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedInput is wrapped by every decode failure: odd-length or non-hex
// input, a truncated buffer, or an unknown byte-order flag.
var ErrMalformedInput = errors.New("malformed ewkb input")

// DefaultSRID is assumed when the type word carries no embedded SRID.
const DefaultSRID uint32 = 4326

// sridFlag is bit 29 of the geometry type word; when set, a 4-byte SRID
// follows the type word in the same byte order.
const sridFlag uint32 = 0x20000000

const (
	orderLen = 1
	typeLen  = 4
	sridLen  = 4
	pointLen = 16 // two IEEE-754 float64s
)

// ByteOrder is the one-byte order flag leading every EWKB stream.
type ByteOrder byte

const (
	BigEndian    ByteOrder = 0
	LittleEndian ByteOrder = 1
)

func (o ByteOrder) byteOrder() (binary.ByteOrder, error) {
	switch o {
	case BigEndian:
		return binary.BigEndian, nil
	case LittleEndian:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: unknown byte-order flag 0x%02x", ErrMalformedInput, byte(o))
	}
}

// Point is a decoded longitude/latitude pair with its spatial reference
// identifier. It is a pure value, produced fresh per decode call.
type Point struct {
	Longitude float64
	Latitude  float64
	SRID      uint32
}

// Decode extracts one point from a hex-encoded EWKB byte stream.
//
// Byte 0 selects the byte order for every multi-byte field that follows.
// Bytes 1-4 are the geometry type word; when its SRID flag is set, the next
// four bytes carry the SRID, otherwise the SRID defaults to 4326. The payload
// is two 8-byte doubles, longitude then latitude. Any shortfall or encoding
// defect fails with ErrMalformedInput; a partial Point is never returned.
func Decode(hexStr string) (Point, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	if len(raw) < orderLen+typeLen+pointLen {
		return Point{}, fmt.Errorf("%w: need at least %d bytes, got %d",
			ErrMalformedInput, orderLen+typeLen+pointLen, len(raw))
	}

	bo, err := ByteOrder(raw[0]).byteOrder()
	if err != nil {
		return Point{}, err
	}

	geomType := bo.Uint32(raw[orderLen : orderLen+typeLen])
	cursor := orderLen + typeLen

	srid := DefaultSRID
	if geomType&sridFlag != 0 {
		geomType &^= sridFlag
		if len(raw) < cursor+sridLen+pointLen {
			return Point{}, fmt.Errorf("%w: srid flag set but only %d bytes remain",
				ErrMalformedInput, len(raw)-cursor)
		}
		srid = bo.Uint32(raw[cursor : cursor+sridLen])
		cursor += sridLen
	}

	lon := math.Float64frombits(bo.Uint64(raw[cursor : cursor+8]))
	lat := math.Float64frombits(bo.Uint64(raw[cursor+8 : cursor+16]))

	return Point{Longitude: lon, Latitude: lat, SRID: srid}, nil
}

// pointType is the WKB geometry type word for a single point.
const pointType uint32 = 1

// Encode renders a Point back into the hex layout Decode consumes. When
// withSRID is false the SRID flag stays clear and the point's SRID is not
// written, matching streams that rely on the 4326 default.
func Encode(p Point, order ByteOrder, withSRID bool) string {
	bo, err := order.byteOrder()
	if err != nil {
		panic(err) // programmer error: order is caller-constructed, not wire input
	}

	size := orderLen + typeLen + pointLen
	geomType := pointType
	if withSRID {
		size += sridLen
		geomType |= sridFlag
	}

	raw := make([]byte, size)
	raw[0] = byte(order)
	bo.PutUint32(raw[orderLen:orderLen+typeLen], geomType)
	cursor := orderLen + typeLen
	if withSRID {
		bo.PutUint32(raw[cursor:cursor+sridLen], p.SRID)
		cursor += sridLen
	}
	bo.PutUint64(raw[cursor:cursor+8], math.Float64bits(p.Longitude))
	bo.PutUint64(raw[cursor+8:cursor+16], math.Float64bits(p.Latitude))

	return hex.EncodeToString(raw)
}
