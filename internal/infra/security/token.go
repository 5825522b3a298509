package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomTokenGenerator returns hex-encoded random identifiers, used as JWT IDs.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = 24
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("token: entropy read failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
