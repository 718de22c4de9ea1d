package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// idLen is the length of an ID's string form: 12 random bytes, hex encoded.
const idLen = 24

// ID is the opaque identity of a persisted aggregate. Its string form is
// always 24 lowercase hex characters and round-trips losslessly.
type ID string

// NewID generates a fresh random ID.
func NewID() ID {
	var b [idLen / 2]byte
	rand.Read(b[:]) // never fails
	return ID(hex.EncodeToString(b[:]))
}

// ParseID validates and normalizes an identifier received at the boundary.
// Uppercase hex is accepted and lowered; anything else is rejected.
func ParseID(s string) (ID, error) {
	s = strings.ToLower(s)
	if len(s) != idLen {
		return "", fmt.Errorf("invalid id %q: want %d hex characters", s, idLen)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", fmt.Errorf("invalid id %q: not hex", s)
	}
	return ID(s), nil
}

func (id ID) String() string { return string(id) }
