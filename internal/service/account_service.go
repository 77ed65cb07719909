// internal/service/account_service.go
package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/mailer"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/repository"
)

type AccountService struct {
	AccountRepo repository.AccountRepositoryInterface
	Mailer      mailer.Mailer
	From        string
	// BaseURL is the externally visible address used in confirmation
	// links, e.g. "http://localhost:8080".
	BaseURL string
}

// Register creates an inactive account and mails a confirmation link.
// The account cannot act until the link is followed.
func (s *AccountService) Register(ctx context.Context, email, displayName string) (*model.Account, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidation("email", "not a valid address")
	}

	account := &model.Account{
		Email:       email,
		DisplayName: displayName,
		Active:      false,
		VerifyToken: strings.ReplaceAll(uuid.New().String(), "-", ""),
	}
	if err := s.AccountRepo.Create(account); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/accounts/email-confirm/%s", s.BaseURL, account.VerifyToken)
	body := fmt.Sprintf(
		"Thanks for signing up! Follow this link to confirm your address and finish registration: %s", url)
	if err := s.Mailer.Send(ctx, "Welcome to our service!", body, s.From, []string{account.Email}); err != nil {
		// The account exists either way; the token can be re-sent by an
		// operator, so only log here.
		log.Warn().Int("account_id", account.ID).Err(err).Msg("confirmation mail failed")
	}
	return account, nil
}

// Verify matches the token from the confirmation link and activates the
// account. An unknown token is a not-found.
func (s *AccountService) Verify(token string) (*model.Account, error) {
	account, err := s.AccountRepo.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if err := s.AccountRepo.Activate(account.ID); err != nil {
		return nil, err
	}
	account.Active = true
	return account, nil
}
