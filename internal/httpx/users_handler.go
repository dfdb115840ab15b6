package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urtree/marketplace/internal/kv"
	"github.com/urtree/marketplace/internal/users"
)

type UsersHandler struct {
	Repo      *users.Repo
	JWTSecret string
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/users/register", h.register)
	r.Post("/users/login", h.login)
	r.Post("/users/google-login", h.googleLogin)
	r.Get("/users/{email}", h.get)
	r.Put("/users/{email}", h.update)
	r.Post("/users/{email}/apply-seller", h.applySeller)
	r.Post("/users/{email}/switch-role", h.switchRole)
	r.Post("/users/{email}/set-pin", h.setPIN)
	r.Post("/users/{email}/verify-pin", h.verifyPIN)
	r.Post("/users/{email}/change-pin", h.changePIN)
}

func (h *UsersHandler) userResponse(u users.User, withToken bool) map[string]any {
	resp := map[string]any{"user": u.Public()}
	if withToken {
		if tok, err := IssueToken(h.JWTSecret, u.Email, u.Role); err == nil {
			resp["token"] = tok
		} else {
			log.Printf("issue token %s: %v", u.Email, err)
		}
	}
	return resp
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.Register(ctx, req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, users.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "user already exists")
	case errors.Is(err, users.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "missing required fields")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to register user")
	default:
		writeJSON(w, http.StatusCreated, h.userResponse(u, true))
	}
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to login")
	default:
		writeJSON(w, http.StatusOK, h.userResponse(u, true))
	}
}

func (h *UsersHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDToken string `json:"idToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req) // body opsional untuk provider mock

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.GoogleLogin(ctx, req.IDToken)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to login with google")
		return
	}
	writeJSON(w, http.StatusOK, h.userResponse(u, true))
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.Get(ctx, chi.URLParam(r, "email"))
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

func (h *UsersHandler) update(w http.ResponseWriter, r *http.Request) {
	var upd users.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.UpdateProfile(ctx, chi.URLParam(r, "email"), upd)
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

func (h *UsersHandler) applySeller(w http.ResponseWriter, r *http.Request) {
	var app users.SellerApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.ApplySeller(ctx, chi.URLParam(r, "email"), app)
	if errors.Is(err, kv.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply as seller")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

func (h *UsersHandler) switchRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewRole string `json:"newRole"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Repo.SwitchRole(ctx, chi.URLParam(r, "email"), req.NewRole)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, users.ErrNoSellerAccount):
		writeError(w, http.StatusBadRequest, "user does not have seller account")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to switch role")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
	}
}

func (h *UsersHandler) setPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Repo.SetPIN(ctx, chi.URLParam(r, "email"), req.Pin)
	switch {
	case errors.Is(err, users.ErrInvalidPIN):
		writeError(w, http.StatusBadRequest, "PIN must be 6 digits")
	case errors.Is(err, kv.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (h *UsersHandler) verifyPIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	valid, err := h.Repo.VerifyPIN(ctx, chi.URLParam(r, "email"), req.Pin)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, users.ErrNoPIN):
		writeJSON(w, http.StatusBadRequest, map[string]any{"valid": false, "error": "no PIN set"})
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to verify PIN")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
	}
}

func (h *UsersHandler) changePIN(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPin string `json:"newPin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Repo.ChangePIN(ctx, chi.URLParam(r, "email"), req.NewPin)
	switch {
	case errors.Is(err, users.ErrInvalidPIN):
		writeError(w, http.StatusBadRequest, "PIN must be 6 digits")
	case errors.Is(err, kv.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to change PIN")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}
