package server

import (
	"net/http"

	"github.com/raphaelgruber/flowmind/internal/models"
	"github.com/raphaelgruber/flowmind/internal/service"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// sessionResponse is the reply to login and refresh.
type sessionResponse struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
}

func sessionReply(session *service.Session) sessionResponse {
	return sessionResponse{
		User:         session.User.Public(),
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user.Public())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := s.accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionReply(session))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := s.accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionReply(session))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.accounts.Logout(r.Context(), req.RefreshToken); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.accounts.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	// same reply whether or not the email exists
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset mail sent if the account exists"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.accounts.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password reset"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Me(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
