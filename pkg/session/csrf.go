package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/zeebo/blake3"
)

// RingSize is the number of outstanding CSRF tokens kept per form.
const RingSize = 10

const csrfKeyPrefix = "csrf_tokens/"

// IssueToken generates a token for form, appends it to the form's ring in s
// and returns it. The oldest token is evicted once the ring is full.
func IssueToken(s *Session, form, sessionID string) (string, error) {
	token, err := newToken(form, sessionID)
	if err != nil {
		return "", err
	}

	ring := Tokens(s, form)
	if len(ring) >= RingSize {
		ring = ring[len(ring)-RingSize+1:]
	}
	next := make([]string, 0, len(ring)+1)
	next = append(next, ring...)
	next = append(next, token)

	s.SetValue(csrfKeyPrefix+form, next)
	return token, nil
}

// ValidateToken reports whether token is outstanding for form and consumes it.
func ValidateToken(s *Session, form, token string) bool {
	if token == "" {
		return false
	}

	ring := Tokens(s, form)
	for i, t := range ring {
		if subtle.ConstantTimeCompare([]byte(t), []byte(token)) != 1 {
			continue
		}
		next := make([]string, 0, len(ring)-1)
		next = append(next, ring[:i]...)
		next = append(next, ring[i+1:]...)
		s.SetValue(csrfKeyPrefix+form, next)
		return true
	}
	return false
}

// Tokens returns the outstanding tokens for form, oldest first.
func Tokens(s *Session, form string) []string {
	raw, ok := s.GetValue(csrfKeyPrefix + form)
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		// Decoded from a JSON-backed store.
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

func newToken(form, sessionID string) (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}

	h := blake3.New()
	_, _ = h.Write(seed)
	_, _ = h.Write([]byte(form))
	_, _ = h.Write([]byte(sessionID))
	_, _ = h.Write([]byte(strconv.FormatInt(time.Now().UnixNano(), 10)))

	return hex.EncodeToString(h.Sum(nil)), nil
}
