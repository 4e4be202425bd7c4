package challenge

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

const saltBytes = 16

// NewSalt returns a fresh per-challenge salt, hex encoded.
func NewSalt() (string, error) {
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate flag salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashFlag derives the stored one-way hash of a flag. Submissions are hashed
// with the same salt before comparison, so the clear flag never persists.
func HashFlag(salt, flag string) string {
	sum := sha3.Sum256([]byte(salt + ":" + flag))
	return hex.EncodeToString(sum[:])
}

// VerifyFlag compares a candidate against the stored hash in constant time,
// closing the timing side-channel a byte-wise compare would open.
func VerifyFlag(c *Challenge, candidate string) bool {
	computed := HashFlag(c.FlagSalt, candidate)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(c.FlagHash)) == 1
}
