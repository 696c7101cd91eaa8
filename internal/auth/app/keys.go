package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/nexus/internal/auth/service"
	"github.com/aussiebroadwan/nexus/pkg/jwtx"
)

// InitAuthKeys builds the KeyManager for the configured key source.
//
// Key sources:
//   - "file": a single key pair loaded from AUTH_PRIVATE_KEY_FILE (and
//     optionally AUTH_PUBLIC_KEY_FILE). Tokens survive restarts and can be
//     verified by other instances sharing the key.
//   - "ephemeral": keys are generated on startup and live only in memory.
//     Every issued token becomes invalid when the process restarts.
//
// Any failure is wrapped with service.ErrConfigurationFatal.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		Issuer:    cfg.Issuer,
		RSABits:   cfg.RSABits,
		NumKeys:   cfg.NumKeys,
	}

	var (
		km  *jwtx.KeyManager
		err error
	)
	switch cfg.KeySource {
	case KeySourceFile:
		km, err = jwtx.NewFileKeyManager(jwtx.FileKeyOptions{
			KeyManagerOptions: opts,
			PrivateKeyFile:    cfg.PrivateKeyFile,
			PublicKeyFile:     cfg.PublicKeyFile,
			KeyID:             cfg.KeyID,
		})
	default:
		km, err = jwtx.NewEphemeralKeyManager(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrConfigurationFatal, err)
	}
	if !km.IsReady() {
		return nil, fmt.Errorf("%w: no signing keys loaded", service.ErrConfigurationFatal)
	}

	logger.Info("signing keys loaded",
		"source", cfg.KeySource,
		"algorithm", km.Algorithm(),
		"num_keys", km.NumSigners(),
		"issuer", cfg.Issuer,
	)
	if cfg.KeySource == KeySourceEphemeral {
		logger.Warn("ephemeral keys in use - tokens will not survive restarts")
	}
	return km, nil
}
