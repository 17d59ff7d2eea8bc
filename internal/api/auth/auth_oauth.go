package auth

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"github.com/signbridge/signbridge-api/config"
	"github.com/signbridge/signbridge-api/internal/api"
	"github.com/signbridge/signbridge-api/internal/types"
)

// InitProviders registers the goth social sign-in providers. Providers with
// empty keys are skipped so local setups work without OAuth credentials.
func InitProviders(cfg config.OAuthConfig) {
	gothic.Store = sessions.NewCookieStore([]byte(cfg.SessionSecret))

	var providers []goth.Provider
	if cfg.Google.Key != "" {
		providers = append(providers, google.New(cfg.Google.Key, cfg.Google.Secret, cfg.Google.CallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)
}

// BeginOAuth starts the provider redirect flow. The provider name comes from
// the {provider} URL parameter, which gothic reads from the request.
func (h *AuthHandler) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, r)
}

// OAuthCallback completes the provider flow, maps the external identity to a
// local account and returns a token pair.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "OAuthCallback"))

	providerUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "OAuth completion failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Social sign-in failed")
		return
	}

	user, err := h.authService.GetOrCreateUserFromProvider(ctx, providerUser.Provider, providerUser)
	if err != nil {
		l.ErrorContext(ctx, "Failed to resolve provider user", slog.Any("error", err))
		api.ErrorResponse(w, r, api.StatusFromError(err), "Social sign-in failed")
		return
	}

	accessToken, refreshToken, err := h.authService.GenerateTokens(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue tokens", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Social sign-in failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, types.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Message:      "Login successful",
	})
}
