package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/service"
)

type memSubscriberRepo struct {
	subscribers map[int]*model.Subscriber
	nextID      int
}

func newMemSubscriberRepo() *memSubscriberRepo {
	return &memSubscriberRepo{subscribers: map[int]*model.Subscriber{}, nextID: 1}
}

func (r *memSubscriberRepo) Create(s *model.Subscriber) error {
	s.ID = r.nextID
	r.nextID++
	copied := *s
	r.subscribers[s.ID] = &copied
	return nil
}

func (r *memSubscriberRepo) Update(s *model.Subscriber) error {
	copied := *s
	r.subscribers[s.ID] = &copied
	return nil
}

func (r *memSubscriberRepo) Delete(id int) error {
	delete(r.subscribers, id)
	return nil
}

func (r *memSubscriberRepo) GetByID(id int) (*model.Subscriber, error) {
	s, ok := r.subscribers[id]
	if !ok {
		return nil, apperrors.NewNotFound("subscriber", id)
	}
	copied := *s
	return &copied, nil
}

func (r *memSubscriberRepo) ListAll() ([]model.Subscriber, error) {
	out := []model.Subscriber{}
	for _, s := range r.subscribers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSubscriberRepo) ListByOwner(ownerID int) ([]model.Subscriber, error) {
	out := []model.Subscriber{}
	for _, s := range r.subscribers {
		if s.OwnerID != nil && *s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memSubscriberRepo) CountAll() (int, error) { return len(r.subscribers), nil }

func newSubscriberService() (*service.SubscriberService, *memSubscriberRepo) {
	repo := newMemSubscriberRepo()
	return &service.SubscriberService{
		SubscriberRepo: repo,
		Access:         access.NewResolver(nil),
	}, repo
}

func TestSubscriberCreateSetsOwner(t *testing.T) {
	svc, repo := newSubscriberService()
	actor := &model.Account{ID: 1, Active: true}

	sub := &model.Subscriber{Email: "alice@example.com", FullName: "Alice Smith"}
	require.NoError(t, svc.Create(actor, sub))

	stored := repo.subscribers[sub.ID]
	require.NotNil(t, stored.OwnerID)
	assert.Equal(t, 1, *stored.OwnerID)
}

func TestSubscriberCreateRejectsBadEmail(t *testing.T) {
	svc, _ := newSubscriberService()
	actor := &model.Account{ID: 1, Active: true}

	err := svc.Create(actor, &model.Subscriber{Email: "nope", FullName: "X"})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSubscriberDetailVisibility(t *testing.T) {
	svc, _ := newSubscriberService()
	owner := &model.Account{ID: 1, Active: true}
	sub := &model.Subscriber{Email: "alice@example.com", FullName: "Alice Smith"}
	require.NoError(t, svc.Create(owner, sub))

	// Owner sees the record.
	got, err := svc.Get(owner, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	// A stranger is denied, and the denial is not a not-found.
	stranger := &model.Account{ID: 2, Active: true}
	_, err = svc.Get(stranger, sub.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.False(t, apperrors.IsNotFound(err))

	// Blanket view capability without ownership is enough.
	manager := &model.Account{ID: 3, Active: true, Permissions: []string{access.PermSubscriberView}}
	_, err = svc.Get(manager, sub.ID)
	assert.NoError(t, err)
}

func TestSubscriberUpdateDeleteVisibility(t *testing.T) {
	svc, repo := newSubscriberService()
	owner := &model.Account{ID: 1, Active: true}
	sub := &model.Subscriber{Email: "alice@example.com", FullName: "Alice Smith"}
	require.NoError(t, svc.Create(owner, sub))

	stranger := &model.Account{ID: 2, Active: true}
	_, err := svc.Update(stranger, &model.Subscriber{ID: sub.ID, Email: "x@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)

	err = svc.Delete(stranger, sub.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.Contains(t, repo.subscribers, sub.ID)

	updated, err := svc.Update(owner, &model.Subscriber{
		ID: sub.ID, Email: "alice+news@example.com", FullName: "Alice Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice+news@example.com", updated.Email)

	require.NoError(t, svc.Delete(owner, sub.ID))
	assert.NotContains(t, repo.subscribers, sub.ID)
}

func TestSubscriberListVisibility(t *testing.T) {
	svc, _ := newSubscriberService()
	owner := &model.Account{ID: 1, Active: true}
	other := &model.Account{ID: 2, Active: true}
	require.NoError(t, svc.Create(owner, &model.Subscriber{Email: "a@example.com", FullName: "A"}))
	require.NoError(t, svc.Create(owner, &model.Subscriber{Email: "b@example.com", FullName: "B"}))
	require.NoError(t, svc.Create(other, &model.Subscriber{Email: "c@example.com", FullName: "C"}))

	ownerList, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, ownerList, 2)

	manager := &model.Account{ID: 3, Active: true, Permissions: []string{access.PermSubscriberView}}
	managerList, err := svc.List(context.Background(), manager)
	require.NoError(t, err)
	assert.Len(t, managerList, 3)
}
