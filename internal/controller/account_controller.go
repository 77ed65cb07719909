// internal/controller/account_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightpost/mailing-backend/internal/service"
)

type AccountController struct {
	AccountService *service.AccountService
}

// Register creates an inactive account and mails the confirmation link.
func (c *AccountController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	account, err := c.AccountService.Register(r.Context(), body.Email, body.DisplayName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

// ConfirmEmail activates the account matching the token.
func (c *AccountController) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	account, err := c.AccountService.Verify(token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":  "email confirmed",
		"account": account,
	})
}
