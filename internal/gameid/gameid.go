// Package gameid produces short, time-sortable identifiers for games.
//
// An id is a UUIDv7 written as 26 lowercase Crockford base32 characters,
// the same layout TypeID uses. Ids sort by creation time.
package gameid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// ErrInvalid is returned when an id cannot be decoded.
var ErrInvalid = errors.New("invalid game id")

// Generate creates a new game ID.
func Generate() string {
	u, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the system random source does.
		return Encode(uuid.New())
	}
	return Encode(u)
}

// Encode writes u as a 26-character base32 string. Two zero bits are
// prepended so the 128 bits fill 26 characters exactly.
func Encode(u uuid.UUID) string {
	out := make([]byte, 0, 26)
	var acc uint32
	bits := 2
	for _, b := range u {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out = append(out, alphabet[(acc>>bits)&0x1f])
		}
		acc &= 1<<bits - 1
	}
	return string(out)
}

// Parse decodes an id produced by Encode.
func Parse(id string) (uuid.UUID, error) {
	var u uuid.UUID
	if err := Validate(id); err != nil {
		return u, err
	}

	acc := uint32(strings.IndexByte(alphabet, id[0]))
	bits := 3
	n := 0
	for i := 1; i < len(id); i++ {
		acc = acc<<5 | uint32(strings.IndexByte(alphabet, id[i]))
		bits += 5
		if bits >= 8 {
			bits -= 8
			u[n] = byte(acc >> bits)
			n++
			acc &= 1<<bits - 1
		}
	}
	return u, nil
}

// Validate checks if a game ID is valid (26 characters, valid base32)
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("%w: must be exactly 26 characters, got %d", ErrInvalid, len(id))
	}

	// The first character carries the two padding bits, so it cannot exceed 7.
	if id[0] > '7' {
		return fmt.Errorf("%w: first character must be 0-7, got %c", ErrInvalid, id[0])
	}

	for i := range len(id) {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("%w: invalid character %c at position %d", ErrInvalid, id[i], i)
		}
	}
	return nil
}
