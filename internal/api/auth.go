package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// OIDCConfig holds OIDC authentication settings.
type OIDCConfig struct {
	IssuerURL string
	Audience  string
}

// Enabled reports whether an issuer is configured.
func (c OIDCConfig) Enabled() bool { return c.IssuerURL != "" }

// TokenVerifier verifies a raw bearer JWT. *oidc.IDTokenVerifier implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// NewOIDCVerifier discovers the issuer and returns a verifier for its tokens.
func NewOIDCVerifier(ctx context.Context, cfg OIDCConfig) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("api: oidc discovery %s: %w", cfg.IssuerURL, err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.Audience}), nil
}

type contextKey string

const ctxUserID contextKey = "user_id"

// UserFromContext extracts the authenticated admin from the request context.
func UserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxUserID).(string)
	return v
}

// requireAdmin guards a handler with the static admin token or an OIDC
// bearer JWT. Without either configured the endpoint is forbidden.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	token, verifier := s.opts.AdminToken, s.opts.Verifier
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" && verifier == nil {
			writeError(w, http.StatusForbidden, "admin access not configured")
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
			return
		}
		raw := strings.TrimSpace(parts[1])

		if token != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(token)) == 1 {
			ctx := context.WithValue(r.Context(), ctxUserID, "admin-token")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}
		if verifier == nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		idToken, err := verifier.Verify(r.Context(), raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
			return
		}

		var claims struct {
			Sub   string `json:"sub"`
			Email string `json:"email"`
		}
		if err := idToken.Claims(&claims); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		userID := claims.Sub
		if userID == "" {
			userID = claims.Email
		}
		ctx := r.Context()
		if userID != "" {
			ctx = context.WithValue(ctx, ctxUserID, userID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
