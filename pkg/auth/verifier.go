package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"careerkit/pkg/utils"
)

// Verifier validates bearer credentials against the external identity
// provider and yields a Principal. It holds no state of its own.
type Verifier interface {
	Verify(ctx context.Context, bearerToken string) (*Principal, error)
}

type VerifierConfig struct {
	BaseURL string // e.g. https://xyz.supabase.co
	APIKey  string // service key sent alongside the bearer token
	Timeout time.Duration
}

type providerVerifier struct {
	cfg    VerifierConfig
	client *http.Client
	logger *zap.Logger
}

func NewVerifier(cfg VerifierConfig, logger *zap.Logger) Verifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &providerVerifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func (v *providerVerifier) Verify(ctx context.Context, bearerToken string) (*Principal, error) {
	// Fail fast on garbage before spending a network round trip. The
	// provider owns cryptographic validation; this only rejects tokens that
	// cannot possibly be JWTs.
	if bearerToken == "" || len(strings.Split(bearerToken, ".")) != 3 {
		return nil, utils.ErrTokenMalformed
	}
	if _, _, err := jwt.NewParser().ParseUnverified(bearerToken, jwt.MapClaims{}); err != nil {
		return nil, utils.ErrTokenMalformed
	}

	url := strings.TrimRight(v.cfg.BaseURL, "/") + "/auth/v1/user"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrIdentityUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("apikey", v.cfg.APIKey)

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("identity provider request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", utils.ErrIdentityUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, utils.ErrSessionInvalid
	case resp.StatusCode >= 500:
		v.logger.Error("identity provider returned server error", zap.Int("status", resp.StatusCode))
		return nil, utils.ErrIdentityUnavailable
	default:
		return nil, utils.ErrSessionInvalid
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		v.logger.Error("identity provider returned undecodable body", zap.Error(err))
		return nil, utils.ErrIdentityUnavailable
	}
	if user.ID == "" {
		return nil, utils.ErrSessionInvalid
	}

	meta := user.UserMetadata
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &Principal{ID: user.ID, Email: user.Email, Metadata: meta}, nil
}
