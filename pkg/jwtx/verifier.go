package jwtx

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrUnknownKID   = errors.New("jwtx: unknown kid")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Verifier checks a compact JWT and returns its claims. It never consults
// session state; callers wanting revocation awareness must check that too.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions configures NewVerifier.
type VerifyOptions struct {
	// Issuer the token must carry. Empty disables the check.
	Issuer string

	// Algorithms accepted in the header. Defaults to RS256 and EdDSA.
	Algorithms []string

	// Leeway absorbs clock skew on exp/nbf.
	Leeway time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

type keySetVerifier struct {
	keys *KeySet
	opts VerifyOptions
}

// NewVerifier returns a Verifier resolving keys by kid from keys.
func NewVerifier(keys *KeySet, opts VerifyOptions) Verifier {
	if len(opts.Algorithms) == 0 {
		opts.Algorithms = []string{AlgorithmRS256, AlgorithmEdDSA}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &keySetVerifier{keys: keys, opts: opts}
}

func (v *keySetVerifier) Verify(raw string) (Claims, error) {
	// Expiry is checked below against our own clock so the parser's check
	// stays out of the way.
	parser := jwt.NewParser(
		jwt.WithValidMethods(v.opts.Algorithms),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}

		alg, _ := t.Header["alg"].(string)
		if !slices.Contains(v.opts.Algorithms, alg) || !keyMatchesAlg(pub, alg) {
			return nil, ErrInvalidSig
		}
		return pub, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKID):
			return Claims{}, ErrUnknownKID
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSig, err)
		}
	}

	if err := claims.ValidateIssuer(v.opts.Issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(v.opts.Now(), v.opts.Leeway); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
