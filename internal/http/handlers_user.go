package http

import (
	"net/http"

	"fintrack/internal/log"
	"fintrack/internal/services"
)

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

type deleteAccountRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	writeJSON(w, http.StatusOK, renderUser(principal))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal := principalFrom(r.Context())
	updated, err := s.users.UpdateProfile(r.Context(), principal.ID, services.UpdateProfileInput{
		Name:            req.Name,
		Email:           req.Email,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Profile updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, updated.ID)
	writeJSON(w, http.StatusOK, renderUser(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	principal := principalFrom(r.Context())
	removed, err := s.users.DeleteAccount(r.Context(), principal.ID, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Account deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, principal.ID,
		"transactions_removed", removed)
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             "Account deleted successfully",
		"transactionsRemoved": removed,
	})
}
