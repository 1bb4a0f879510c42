package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/firegate/pkg/jwtx"
)

// InitSessionKeys generates the session signing keys. Keys live only in
// memory, so every session token is invalidated when the service restarts.
func InitSessionKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	logger.Info("initializing ephemeral key manager",
		"algorithm", jwtx.AlgorithmEdDSA,
		"num_keys", cfg.NumKeys,
	)

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		NumKeys: cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
	}

	logger.Info("generated ephemeral signing keys",
		"num_keys", km.NumSigners(),
		"issuer", km.Issuer(),
	)
	logger.Warn("all existing sessions are now invalid due to key rotation on startup")
	return km, nil
}
