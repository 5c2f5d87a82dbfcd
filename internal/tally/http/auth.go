package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/quietloops/tally/internal/tally/domain"
	"github.com/quietloops/tally/internal/tally/service"
	"github.com/quietloops/tally/pkg/httpx"
	"github.com/quietloops/tally/pkg/i18nx"
	"github.com/quietloops/tally/pkg/slogx"
)

// AuthHandler serves registration and the token lifecycle endpoints.
type AuthHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
	Translator   i18nx.Translator
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// tokenResponse mirrors the session cookies for non-cookie clients.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func newTokenResponse(pair domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int(pair.AccessTTL.Seconds()),
	}
}

// HandleRegister serves POST /v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	u, err := h.UserService.Register(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			writeError(w, r, h.Translator, http.StatusConflict, "username_taken")
			return
		}
		slogx.FromContext(ctx).Error("registration failed", "err", err)
		writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, userResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	})
}

// HandleLogin serves POST /v1/auth/login. On success it sets the session
// cookies and returns the pair in the body.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, h.Translator, http.StatusBadRequest, "invalid_request")
		return
	}

	_, pair, err := h.TokenService.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, r, h.Translator, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		slogx.FromContext(ctx).Error("login failed", "err", err)
		writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
		return
	}

	attachSession(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRefresh serves POST /v1/auth/refresh. The refresh token comes from
// the session cookie or, for non-cookie clients, the request body.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := extractRefresh(r)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		writeError(w, r, h.Translator, http.StatusUnauthorized, "unauthenticated")
		return
	}

	pair, err := h.TokenService.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			writeError(w, r, h.Translator, http.StatusUnauthorized, "unauthenticated")
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "err", err)
		writeError(w, r, h.Translator, http.StatusInternalServerError, "internal_error")
		return
	}

	attachSession(w, pair)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleLogout serves POST /v1/auth/logout. It only clears the session
// cookies; issued tokens stay valid until their own expiry.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSession(w)
	httpx.WriteJSON(w, http.StatusOK, messageResponse{
		Message: h.Translator.Translate("logged_out", requestLanguage(r)),
	})
}
