package security

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// CardHashIterations is the PBKDF2 work factor for card number hashes.
	CardHashIterations = 100_000
	cardHashKeyLength  = 32
)

// ErrSaltNotConfigured is returned when no card hash salt is available.
var ErrSaltNotConfigured = errors.New("card hash salt not configured")

// Hasher turns a value into a deterministic one-way digest.
type Hasher interface {
	Hash(value string) string
}

// PBKDF2Hasher derives card number hashes with PBKDF2-HMAC-SHA256 and a
// salt that is fixed for the deployment, so equal inputs hash equally.
type PBKDF2Hasher struct {
	salt       []byte
	iterations int
}

var _ Hasher = (*PBKDF2Hasher)(nil)

// NewPBKDF2Hasher builds a hasher from a base64 encoded salt.
func NewPBKDF2Hasher(encodedSalt string) (*PBKDF2Hasher, error) {
	if encodedSalt == "" {
		return nil, ErrSaltNotConfigured
	}
	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return nil, fmt.Errorf("decode card hash salt: %w", err)
	}
	if len(salt) == 0 {
		return nil, ErrSaltNotConfigured
	}
	return &PBKDF2Hasher{salt: salt, iterations: CardHashIterations}, nil
}

// Hash returns the base64 encoded derived key for value.
func (h *PBKDF2Hasher) Hash(value string) string {
	key := pbkdf2.Key([]byte(value), h.salt, h.iterations, cardHashKeyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key)
}
