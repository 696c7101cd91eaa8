package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantLen int
	}{
		{"128-bit token", TokenSize128, 22},
		{"256-bit token", TokenSize256, 43},
		{"custom size", 24, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.Len(t, token, tt.wantLen)

			token2, err := GenerateToken(tt.size)
			require.NoError(t, err)
			require.NotEqual(t, token, token2, "tokens should be unique")
		})
	}
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestHashToken(t *testing.T) {
	a1 := HashToken("token-a")
	a2 := HashToken("token-a")
	b := HashToken("token-b")

	require.Equal(t, a1, a2, "hash should be deterministic")
	require.NotEqual(t, a1, b)
	require.Len(t, a1, 43, "SHA-256 base64url should be 43 chars")
	require.NotContains(t, a1, "token-a")
}

func TestDeviceFingerprint(t *testing.T) {
	fp := DeviceFingerprint("203.0.113.7", "curl/8.0")
	require.Len(t, fp, DeviceFingerprintLength)

	sum := sha256.Sum256([]byte("203.0.113.7:curl/8.0"))
	require.Equal(t, hex.EncodeToString(sum[:])[:32], fp)

	require.Equal(t, fp, DeviceFingerprint("203.0.113.7", "curl/8.0"))
	require.NotEqual(t, fp, DeviceFingerprint("203.0.113.8", "curl/8.0"))
	require.NotEqual(t, fp, DeviceFingerprint("203.0.113.7", "curl/8.1"))
}
