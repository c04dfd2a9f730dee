package web

import (
	"mime"
	"net/http"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/user"
)

// authHandlers serves signup and token login.
type authHandlers struct {
	users *user.Service
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleSignup creates an account from a JSON body.
func (h *authHandlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req user.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	u, err := h.users.Signup(r.Context(), req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, u, http.StatusCreated)
}

// handleLogin exchanges credentials for a bearer token. It accepts the
// OAuth2 password form encoding as well as JSON.
func (h *authHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			apiError(w, r, apperr.New(apperr.Invalid, "invalid form body"))
			return
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	} else if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		apiError(w, r, err)
		return
	}
	apiJSON(w, tokenResponse{AccessToken: token, TokenType: "bearer"}, http.StatusOK)
}
