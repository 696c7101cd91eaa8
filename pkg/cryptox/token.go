package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

const (
	// TokenSize128 is 128 bits of entropy (22 chars base64url).
	TokenSize128 = 16
	// TokenSize256 is 256 bits of entropy (43 chars base64url).
	TokenSize256 = 32
)

// DeviceFingerprintLength is the number of hex characters kept from the
// device digest.
const DeviceFingerprintLength = 32

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the SHA-256 digest of an opaque secret as unpadded
// base64url (43 chars). Only this value is ever written to storage.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// DeviceFingerprint binds a credential to the client that presented it. Both
// inputs are client supplied, so the result is a soft binding only.
func DeviceFingerprint(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])[:DeviceFingerprintLength]
}
