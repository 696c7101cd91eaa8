package jwtx

import (
	"crypto"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/nexus/pkg/cryptox"
)

// ErrKeysUnavailable is returned when signing keys cannot be loaded. The
// service must not start without them.
var ErrKeysUnavailable = errors.New("jwtx: signing keys unavailable")

// KeyManager owns the signing keys of one instance together with the KeySet
// and Verifier built from them.
type KeyManager struct {
	KeySet   *KeySet
	Verifier Verifier

	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions are shared by every construction mode.
type KeyManagerOptions struct {
	// Algorithm is RS256 or EdDSA.
	Algorithm string

	// Issuer is stamped on and required of every token.
	Issuer string

	// Leeway absorbs clock skew during verification.
	Leeway time.Duration

	// RSABits sizes generated RS256 keys (default 2048).
	RSABits int

	// NumKeys is how many ephemeral keys to generate (1 to 10, default 1).
	NumKeys int
}

// FileKeyOptions loads a single key pair from disk.
type FileKeyOptions struct {
	KeyManagerOptions

	// PrivateKeyFile holds the PKCS1 or PKCS8 private key PEM.
	PrivateKeyFile string

	// PublicKeyFile optionally holds the PKIX public key PEM. When set it
	// must match the private key.
	PublicKeyFile string

	// KeyID is published as kid. Defaults to "nexus-<alg>".
	KeyID string
}

// NewFileKeyManager loads the configured key pair. Every failure wraps
// ErrKeysUnavailable.
func NewFileKeyManager(opts FileKeyOptions) (*KeyManager, error) {
	if opts.PrivateKeyFile == "" {
		return nil, fmt.Errorf("%w: no private key file configured", ErrKeysUnavailable)
	}

	privPEM, err := os.ReadFile(opts.PrivateKeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}

	kid := opts.KeyID
	if kid == "" {
		kid = "nexus-" + strings.ToLower(opts.Algorithm)
	}

	signer, err := NewSigner(opts.Algorithm, kid, privPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
	}

	if opts.PublicKeyFile != "" {
		pubPEM, err := os.ReadFile(opts.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
		}
		pub, err := cryptox.ParsePublicKeyPEM(pubPEM)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeysUnavailable, err)
		}
		eq, ok := pub.(interface{ Equal(crypto.PublicKey) bool })
		if !ok || !eq.Equal(signer.PublicKey()) {
			return nil, fmt.Errorf("%w: public key does not match private key", ErrKeysUnavailable)
		}
	}

	return newKeyManager(opts.KeyManagerOptions, []Signer{signer})
}

// NewEphemeralKeyManager generates keys in memory. Tokens do not survive a
// restart, which suits development and tests.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	n := min(max(opts.NumKeys, 1), 10)

	signers := make([]Signer, 0, n)
	for i := range n {
		kid, err := randomKeyID()
		if err != nil {
			return nil, err
		}

		var privPEM []byte
		switch opts.Algorithm {
		case AlgorithmRS256:
			bits := opts.RSABits
			if bits == 0 {
				bits = cryptox.MinRSABits
			}
			privPEM, err = cryptox.GenerateRSAKey(bits)
		case AlgorithmEdDSA:
			privPEM, err = cryptox.GenerateEd25519Key()
		default:
			err = fmt.Errorf("unsupported algorithm %q", opts.Algorithm)
		}
		if err != nil {
			return nil, fmt.Errorf("jwtx: generate key %d: %w", i+1, err)
		}

		s, err := NewSigner(opts.Algorithm, kid, privPEM)
		if err != nil {
			return nil, err
		}
		signers = append(signers, s)
	}

	return newKeyManager(opts, signers)
}

func newKeyManager(opts KeyManagerOptions, signers []Signer) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}

	keyset := NewKeySet()
	for _, s := range signers {
		if err := keyset.AddSigner(s); err != nil {
			return nil, err
		}
	}

	return &KeyManager{
		KeySet: keyset,
		Verifier: NewVerifier(keyset, VerifyOptions{
			Issuer:     opts.Issuer,
			Algorithms: []string{opts.Algorithm},
			Leeway:     opts.Leeway,
		}),
		algorithm: opts.Algorithm,
		signers:   signers,
	}, nil
}

func (km *KeyManager) Algorithm() string { return km.algorithm }
func (km *KeyManager) IsReady() bool     { return km.KeySet.IsReady() && km.NumSigners() > 0 }

// GetSigner picks one of the active signers at random.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

func randomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("jwtx: key id: %w", err)
	}
	return "nexus-" + token, nil
}
