package jwtx

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the public verification keys by kid, along with the JWKS
// document served to other services.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	pub  map[string]crypto.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]crypto.PublicKey)}
}

// AddSigner publishes the public half of s.
func (k *KeySet) AddSigner(s Signer) error {
	return k.Add(s.KID(), s.Alg(), s.PublicKey())
}

// Add registers a verification-only key, for example the configured public
// key file when it carries a different kid from the signer.
func (k *KeySet) Add(kid, alg string, pub crypto.PublicKey) error {
	jwk, err := NewJWK(kid, alg, pub)
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if _, exists := k.pub[kid]; exists {
		return errors.New("jwtx: duplicate kid " + kid)
	}
	k.pub[kid] = pub
	k.jwks.Keys = append(k.jwks.Keys, jwk)
	return nil
}

// Get returns the public key registered under kid.
func (k *KeySet) Get(kid string) (crypto.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// PublicJWKS returns a copy of the published key set.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK(nil), k.jwks.Keys...)}
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

func keyMatchesAlg(pub crypto.PublicKey, alg string) bool {
	switch pub.(type) {
	case *rsa.PublicKey:
		return alg == AlgorithmRS256
	case ed25519.PublicKey:
		return alg == AlgorithmEdDSA
	default:
		return false
	}
}
