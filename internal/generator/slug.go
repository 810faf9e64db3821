package generator

import (
	"crypto/rand"
	"fmt"
)

const slugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSlug returns a random lowercase alphanumeric string of exactly length characters.
// Collisions are left to the store's uniqueness constraint.
func GenerateSlug(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid slug length %d", length)
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = slugAlphabet[int(b[i])%len(slugAlphabet)]
	}

	return string(b), nil
}
