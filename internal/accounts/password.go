package accounts

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordScheme     = "pbkdf2_sha256"
	passwordIterations = 390000
	saltBytes          = 16
	keyBytes           = 32
)

// HashPassword derives a PBKDF2-SHA256 key and encodes it as
// "pbkdf2_sha256$<iterations>$<salt hex>$<key hex>".
func HashPassword(password string, iterations int) (string, error) {
	if iterations <= 0 {
		iterations = passwordIterations
	}
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return encodeHash(password, hex.EncodeToString(salt), iterations), nil
}

func encodeHash(password, saltHex string, iterations int) string {
	salt, _ := hex.DecodeString(saltHex)
	key := pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha256.New)
	return strings.Join([]string{passwordScheme, strconv.Itoa(iterations), saltHex, hex.EncodeToString(key)}, "$")
}

// CheckPassword reports whether password matches encoded.
func CheckPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != passwordScheme {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	if _, err := hex.DecodeString(parts[2]); err != nil {
		return false
	}
	computed := encodeHash(password, parts[2], iterations)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1
}
