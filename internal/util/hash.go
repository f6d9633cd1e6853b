package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lower-case hex SHA-256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashToken is the at-rest form of refresh and reset tokens.
func HashToken(token string) string {
	return SHA256Hex([]byte(token))
}
