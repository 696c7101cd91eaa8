package jwtx

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/nexus/pkg/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// Supported signing algorithms.
const (
	AlgorithmRS256 = "RS256"
	AlgorithmEdDSA = "EdDSA"
)

// Signer signs access claims with one private key.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicKey() crypto.PublicKey
	PublicJWK() JWK
}

type keySigner struct {
	kid    string
	method jwt.SigningMethod
	key    crypto.Signer
}

// NewSigner loads a PKCS1 or PKCS8 private key and binds it to alg. The key
// type must agree with alg.
func NewSigner(alg, kid string, privatePEM []byte) (Signer, error) {
	if kid == "" {
		return nil, errors.New("jwtx: kid is required")
	}

	priv, err := cryptox.ParsePrivateKeyPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("jwtx: %w", err)
	}

	switch alg {
	case AlgorithmRS256:
		k, ok := priv.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("jwtx: RS256 needs an RSA key, got %T", priv)
		}
		if k.N.BitLen() < cryptox.MinRSABits {
			return nil, fmt.Errorf("jwtx: RSA key is %d bits, need %d", k.N.BitLen(), cryptox.MinRSABits)
		}
		return &keySigner{kid: kid, method: jwt.SigningMethodRS256, key: k}, nil

	case AlgorithmEdDSA:
		k, ok := priv.(ed25519.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("jwtx: EdDSA needs an Ed25519 key, got %T", priv)
		}
		return &keySigner{kid: kid, method: jwt.SigningMethodEdDSA, key: k}, nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", alg)
	}
}

func (s *keySigner) Alg() string                 { return s.method.Alg() }
func (s *keySigner) KID() string                 { return s.kid }
func (s *keySigner) PublicKey() crypto.PublicKey { return s.key.Public() }

func (s *keySigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *keySigner) PublicJWK() JWK {
	jwk, _ := NewJWK(s.kid, s.Alg(), s.key.Public())
	return jwk
}
