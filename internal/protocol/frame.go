// Package protocol implements the framed binary packets exchanged between the
// host and the peripheral boards over a shared serial link.
//
// Every frame starts with a magic byte naming its family, then a version byte
// and a wrapping sequence number, and ends with a checksum: the sum of all
// preceding bytes modulo 256.
package protocol

import (
	"encoding"
	"errors"
)

// Family magic bytes.
const (
	MagicSnapshot    byte = 0xC7
	MagicTileVector  byte = 0xD3
	MagicMenuControl byte = 0xB7
	MagicMenuRender  byte = 0xA9
	MagicMenuEvent   byte = 0xE5
)

// Version is the only protocol version understood by this package.
const Version byte = 0x01

// Frame sizes and field widths.
const (
	PlayerCount     = 3
	PlayerBlockSize = 11
	SnapshotSize    = 3 + PlayerCount*PlayerBlockSize + 1

	TileCount      = 19
	TileVectorSize = 4 + TileCount + 1
	MaxTileValue   = 4

	menuControlLen  = 2
	MenuControlSize = 4 + menuControlLen + 1

	MenuLines      = 4
	MenuLineWidth  = 21
	menuRenderLen  = 1 + MenuLines*MenuLineWidth
	MenuRenderSize = 4 + menuRenderLen + 1

	menuEventOverhead = 5
	maxDevCardID      = 4
)

const flagReset byte = 0x01

var (
	ErrBadMagic   = errors.New("protocol: bad magic")
	ErrBadVersion = errors.New("protocol: bad version")
	ErrBadLength  = errors.New("protocol: bad length")
	ErrChecksum   = errors.New("protocol: checksum mismatch")
	ErrMalformed  = errors.New("protocol: malformed value")
	ErrShortFrame = errors.New("protocol: short frame")
)

// Packet is one decoded frame of any family.
type Packet interface {
	encoding.BinaryMarshaler
	Magic() byte
	Sequence() uint8
	setSequence(seq uint8)
}

// Checksum sums b modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, c := range b {
		sum += c
	}
	return sum
}

// Clip clamps v into a single unsigned byte.
func Clip(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

// Known reports whether magic names a packet family.
func Known(magic byte) bool {
	switch magic {
	case MagicSnapshot, MagicTileVector, MagicMenuControl, MagicMenuRender, MagicMenuEvent:
		return true
	}
	return false
}

// frameSize returns the full size of the frame starting at head[0]. need is
// set when head is too short to tell; ok is false for an impossible header.
func frameSize(head []byte) (size int, need, ok bool) {
	switch head[0] {
	case MagicSnapshot:
		return SnapshotSize, false, true
	case MagicTileVector:
		return TileVectorSize, false, true
	case MagicMenuControl:
		return MenuControlSize, false, true
	case MagicMenuRender:
		return MenuRenderSize, false, true
	case MagicMenuEvent:
		if len(head) < 4 {
			return 0, true, true
		}
		n := int(head[3])
		if !validEventLen(n) {
			return 0, false, false
		}
		return menuEventOverhead + n, false, true
	}
	return 0, false, false
}

// Decode parses one complete frame into its packet type.
func Decode(frame []byte) (Packet, error) {
	if len(frame) == 0 {
		return nil, ErrShortFrame
	}
	var p interface {
		Packet
		encoding.BinaryUnmarshaler
	}
	switch frame[0] {
	case MagicSnapshot:
		p = &Snapshot{}
	case MagicTileVector:
		p = &TileVector{}
	case MagicMenuControl:
		p = &MenuControl{}
	case MagicMenuRender:
		p = &MenuRender{}
	case MagicMenuEvent:
		p = &MenuEvent{}
	default:
		return nil, ErrBadMagic
	}
	if err := p.UnmarshalBinary(frame); err != nil {
		return nil, err
	}
	return p, nil
}

// header opens a frame of the given family for decoding and checks the parts
// common to every family.
func header(frame []byte, magic byte, size int) (*reader, error) {
	if len(frame) != size {
		return nil, ErrBadLength
	}
	if frame[0] != magic {
		return nil, ErrBadMagic
	}
	if frame[1] != Version {
		return nil, ErrBadVersion
	}
	if frame[size-1] != Checksum(frame[:size-1]) {
		return nil, ErrChecksum
	}
	return &reader{b: frame[:size-1], off: 2}, nil
}

// seal appends the checksum to a frame under construction.
func seal(b []byte) []byte {
	return append(b, Checksum(b))
}
