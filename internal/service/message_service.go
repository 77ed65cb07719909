// internal/service/message_service.go
package service

import (
	"context"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/repository"
)

type MessageService struct {
	MessageRepo repository.MessageRepositoryInterface
	Access      *access.Resolver
}

func (s *MessageService) Create(actor *model.Account, m *model.Message) error {
	if m.Subject == "" {
		return apperrors.NewValidation("subject", "must not be empty")
	}
	m.OwnerID = &actor.ID
	return s.MessageRepo.Create(m)
}

func (s *MessageService) Get(actor *model.Account, id int) (*model.Message, error) {
	m, err := s.MessageRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, m.OwnerID, access.PermMessageView); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MessageService) List(ctx context.Context, actor *model.Account) ([]model.Message, error) {
	return access.FilterList(ctx, s.Access, actor, "message",
		s.MessageRepo.ListAll, s.MessageRepo.ListByOwner)
}

func (s *MessageService) Update(actor *model.Account, m *model.Message) (*model.Message, error) {
	current, err := s.MessageRepo.GetByID(m.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, current.OwnerID, access.PermMessageChange); err != nil {
		return nil, err
	}
	if m.Subject == "" {
		return nil, apperrors.NewValidation("subject", "must not be empty")
	}
	current.Subject = m.Subject
	current.Body = m.Body
	if err := s.MessageRepo.Update(current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete removes the message; dependent campaigns cascade away in the
// store.
func (s *MessageService) Delete(actor *model.Account, id int) error {
	current, err := s.MessageRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Access.Authorize(actor, current.OwnerID, access.PermMessageDelete); err != nil {
		return err
	}
	return s.MessageRepo.Delete(id)
}
