// ABOUTME: Login endpoint issuing access tokens.
// ABOUTME: Checks bcrypt password hashes and answers with the Flask API's messages.

package backend

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	apierrors "github.com/2389/provadmin/internal/errors"
	"github.com/2389/provadmin/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userJSON struct {
	ID    int64  `json:"id"`
	Name  string `json:"nombre"`
	Email string `json:"email"`
	Role  string `json:"rol"`
}

type loginResponse struct {
	AccessToken string   `json:"access_token"`
	User        userJSON `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrInvalidBody, msgLoginMissing)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		apierrors.WriteError(w, http.StatusBadRequest, apierrors.ErrMissingField, msgLoginMissing)
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if errors.Is(err, store.ErrNotFound) {
		apierrors.WriteError(w, http.StatusNotFound, apierrors.ErrNotFound, msgEmailNotFound)
		return
	}
	if err != nil {
		log.Printf("backend: load user %q: %v", req.Email, err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrDatabaseError, msgInternal)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		apierrors.WriteError(w, http.StatusUnauthorized, apierrors.ErrBadCredentials, msgBadCredentials)
		return
	}

	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		log.Printf("backend: issue token for user %d: %v", user.ID, err)
		apierrors.WriteError(w, http.StatusInternalServerError, apierrors.ErrInternal, msgInternal)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		User: userJSON{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

// HashPassword returns a bcrypt hash suitable for store.User.PasswordHash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
