package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

func CreateSHA256Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a truncated sha256, used where the full digest is only noise (e.g. log lines).
func ShortHash(data []byte) string {
	return CreateSHA256Hash(data)[:12]
}
