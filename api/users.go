package api

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/Kishan-kumar001/mern-task-manager/auth"
	"github.com/Kishan-kumar001/mern-task-manager/models"
	"github.com/Kishan-kumar001/mern-task-manager/service"
)

type tokenResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
	User         *models.User `json:"user,omitempty"`
}

func (s *Server) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, msgBadPayload)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	u, err := s.Auth.Register(ctx, creds)
	if err != nil {
		s.authError(w, r, err)
		return
	}

	log.WithField("user", u.ID).Info("user registered")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, msgBadPayload)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	u, tokens, err := s.Auth.Login(ctx, creds)
	if err != nil {
		s.authError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         u,
	})
}

func (s *Server) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeJSON(w, r, &request); err != nil || request.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, msgBadPayload)
		return
	}

	ctx, cancel := s.storeContext(r)
	defer cancel()

	tokens, err := s.Auth.Refresh(ctx, request.RefreshToken)
	if err != nil {
		s.authError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		Token:        tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r)
	defer cancel()

	if err := s.Auth.Logout(ctx, claimsFromContext(r.Context())); err != nil {
		s.authError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (s *Server) authError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		log.WithField("path", r.URL.Path).WithError(err).Debug("token rejected")
		writeError(w, http.StatusUnauthorized, "Not authorized, token failed")
	default:
		log.WithField("path", r.URL.Path).WithError(err).Error("auth failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
