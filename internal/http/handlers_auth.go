package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, u.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: renderUser(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	u, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User logged in",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, u.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: renderUser(u)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome back, " + core.ToProperCase(principal.Name),
		"user":    renderUser(principal),
	})
}
