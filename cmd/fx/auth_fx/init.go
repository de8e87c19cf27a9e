package auth_fx

import (
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"careerkit/pkg/auth"
)

var Module = fx.Provide(provideVerifier)

func provideVerifier(logger *zap.Logger) auth.Verifier {
	cfg := auth.VerifierConfig{
		BaseURL: os.Getenv("IDENTITY_URL"),
		APIKey:  os.Getenv("IDENTITY_API_KEY"),
		Timeout: 5 * time.Second,
	}
	return auth.NewVerifier(cfg, logger)
}
