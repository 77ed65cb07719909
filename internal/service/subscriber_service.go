// internal/service/subscriber_service.go
package service

import (
	"context"
	"net/mail"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/repository"
)

type SubscriberService struct {
	SubscriberRepo repository.SubscriberRepositoryInterface
	Access         *access.Resolver
}

func validEmail(address string) error {
	if _, err := mail.ParseAddress(address); err != nil {
		return apperrors.NewValidation("email", "not a valid address")
	}
	return nil
}

func (s *SubscriberService) Create(actor *model.Account, sub *model.Subscriber) error {
	if err := validEmail(sub.Email); err != nil {
		return err
	}
	sub.OwnerID = &actor.ID
	return s.SubscriberRepo.Create(sub)
}

func (s *SubscriberService) Get(actor *model.Account, id int) (*model.Subscriber, error) {
	sub, err := s.SubscriberRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, sub.OwnerID, access.PermSubscriberView); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubscriberService) List(ctx context.Context, actor *model.Account) ([]model.Subscriber, error) {
	return access.FilterList(ctx, s.Access, actor, "subscriber",
		s.SubscriberRepo.ListAll, s.SubscriberRepo.ListByOwner)
}

func (s *SubscriberService) Update(actor *model.Account, sub *model.Subscriber) (*model.Subscriber, error) {
	current, err := s.SubscriberRepo.GetByID(sub.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, current.OwnerID, access.PermSubscriberChange); err != nil {
		return nil, err
	}
	if err := validEmail(sub.Email); err != nil {
		return nil, err
	}
	current.Email = sub.Email
	current.FullName = sub.FullName
	current.Comment = sub.Comment
	if err := s.SubscriberRepo.Update(current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *SubscriberService) Delete(actor *model.Account, id int) error {
	current, err := s.SubscriberRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Access.Authorize(actor, current.OwnerID, access.PermSubscriberDelete); err != nil {
		return err
	}
	return s.SubscriberRepo.Delete(id)
}
