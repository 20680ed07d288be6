// Package id generates identifiers that sort by creation time.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford's Base32 alphabet (no I, L, O, U).
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewULID returns a 26-character ULID: 48 bits of milliseconds followed by
// 80 random bits.
func NewULID() string {
	return encode(time.Now(), 10, 16)
}

// NewShortID returns a 16-character ID: 30 bits of milliseconds followed by
// 50 random bits. It sorts by time for about 12 days before wrapping, which
// is enough for ordering within a page but not for global ordering.
func NewShortID() string {
	return encode(time.Now(), 6, 10)
}

// encode writes timeChars base32 digits of the millisecond clock followed by
// randChars digits of random bits.
func encode(now time.Time, timeChars, randChars int) string {
	ms := uint64(now.UnixMilli())
	random := make([]byte, (randChars*5+7)/8)
	if _, err := rand.Read(random); err != nil {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(now.UnixNano()))
		copy(random, b[:])
	}

	out := make([]byte, timeChars+randChars)
	for i := timeChars - 1; i >= 0; i-- {
		out[i] = alphabet[ms&0x1F]
		ms >>= 5
	}

	var acc uint64
	var bits uint
	pos := timeChars
	for _, b := range random {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 && pos < len(out) {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1F]
			pos++
		}
	}
	return string(out)
}
