package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/events"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/service"
)

// --- Fakes ---

type fakeCampaignRepo struct {
	campaigns    map[int]*model.Campaign
	emails       map[int][]string
	statusWrites []string
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{
		campaigns: map[int]*model.Campaign{},
		emails:    map[int][]string{},
	}
}

func (r *fakeCampaignRepo) GetByID(id int) (*model.Campaign, error) {
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperrors.NewNotFound("campaign", id)
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCampaignRepo) UpdateStatus(campaignID int, status string) error {
	r.statusWrites = append(r.statusWrites, status)
	if c, ok := r.campaigns[campaignID]; ok {
		c.Status = status
	}
	return nil
}

func (r *fakeCampaignRepo) SubscriberEmails(campaignID int) ([]string, error) {
	return r.emails[campaignID], nil
}

func (r *fakeCampaignRepo) ListAll() ([]model.Campaign, error)                { return nil, nil }
func (r *fakeCampaignRepo) ListByOwner(ownerID int) ([]model.Campaign, error) { return nil, nil }
func (r *fakeCampaignRepo) Create(c *model.Campaign) error                    { r.campaigns[c.ID] = c; return nil }
func (r *fakeCampaignRepo) Update(c *model.Campaign) error                    { return nil }
func (r *fakeCampaignRepo) SetActive(campaignID int, active bool) error {
	if c, ok := r.campaigns[campaignID]; ok {
		c.Active = active
	}
	return nil
}
func (r *fakeCampaignRepo) Delete(id int) error                      { delete(r.campaigns, id); return nil }
func (r *fakeCampaignRepo) CountAll() (int, error)                   { return len(r.campaigns), nil }
func (r *fakeCampaignRepo) CountByStatus(status string) (int, error) { return 0, nil }

type fakeMessageRepo struct {
	messages map[int]*model.Message
}

func (r *fakeMessageRepo) GetByID(id int) (*model.Message, error) {
	m, ok := r.messages[id]
	if !ok {
		return nil, apperrors.NewNotFound("message", id)
	}
	return m, nil
}
func (r *fakeMessageRepo) ListAll() ([]model.Message, error)                { return nil, nil }
func (r *fakeMessageRepo) ListByOwner(ownerID int) ([]model.Message, error) { return nil, nil }
func (r *fakeMessageRepo) Create(m *model.Message) error                    { return nil }
func (r *fakeMessageRepo) Update(m *model.Message) error                    { return nil }
func (r *fakeMessageRepo) Delete(id int) error                              { return nil }

type fakeSubscriberRepo struct{ count int }

func (r *fakeSubscriberRepo) GetByID(id int) (*model.Subscriber, error)           { return nil, nil }
func (r *fakeSubscriberRepo) ListAll() ([]model.Subscriber, error)                { return nil, nil }
func (r *fakeSubscriberRepo) ListByOwner(ownerID int) ([]model.Subscriber, error) { return nil, nil }
func (r *fakeSubscriberRepo) Create(s *model.Subscriber) error                    { return nil }
func (r *fakeSubscriberRepo) Update(s *model.Subscriber) error                    { return nil }
func (r *fakeSubscriberRepo) Delete(id int) error                                 { return nil }
func (r *fakeSubscriberRepo) CountAll() (int, error)                              { return r.count, nil }

type fakeAttemptRepo struct {
	attempts []model.Attempt
}

func (r *fakeAttemptRepo) Create(a *model.Attempt) error {
	a.ID = len(r.attempts) + 1
	r.attempts = append(r.attempts, *a)
	return nil
}

func (r *fakeAttemptRepo) ListByCampaign(campaignID int) ([]model.Attempt, error) {
	out := []model.Attempt{}
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if r.attempts[i].CampaignID == campaignID {
			out = append(out, r.attempts[i])
		}
	}
	return out, nil
}

type fakeMailer struct {
	sent []string
	fail func(recipient string) error
}

func (m *fakeMailer) Send(ctx context.Context, subject, body, from string, to []string) error {
	m.sent = append(m.sent, to[0])
	if m.fail != nil {
		return m.fail(to[0])
	}
	return nil
}

// --- Helpers ---

var frozenNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *service.MailingService
	campaigns *fakeCampaignRepo
	attempts  *fakeAttemptRepo
	mailer    *fakeMailer
}

func newFixture() *fixture {
	campaigns := newFakeCampaignRepo()
	attempts := &fakeAttemptRepo{}
	sender := &fakeMailer{}
	svc := &service.MailingService{
		CampaignRepo:   campaigns,
		SubscriberRepo: &fakeSubscriberRepo{},
		MessageRepo: &fakeMessageRepo{messages: map[int]*model.Message{
			10: {ID: 10, Subject: "Hi", Body: "Hello there"},
		}},
		AttemptRepo: attempts,
		Access:      access.NewResolver(nil),
		Mailer:      sender,
		Events:      events.NopPublisher{},
		From:        "noreply@example.com",
		Now:         func() time.Time { return frozenNow },
	}
	return &fixture{svc: svc, campaigns: campaigns, attempts: attempts, mailer: sender}
}

func ownerAccount() *model.Account {
	return &model.Account{ID: 1, Email: "owner@example.com", Active: true}
}

func (f *fixture) addCampaign(status string, active bool, endAt time.Time) *model.Campaign {
	ownerID := 1
	c := &model.Campaign{
		ID:        7,
		BeginAt:   frozenNow.Add(-time.Hour),
		EndAt:     endAt,
		Status:    status,
		Active:    active,
		OwnerID:   &ownerID,
		MessageID: 10,
	}
	f.campaigns.campaigns[c.ID] = c
	return c
}

// --- Lifecycle guard ---

func TestPrepareDispatchWindowExpired(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(-24*time.Hour))

	got, err := f.svc.SendCampaign(context.Background(), ownerAccount(), c.ID)

	assert.Nil(t, got)
	assert.Equal(t, apperrors.BlockedWindowExpired, apperrors.BlockedReason(err))
	assert.Equal(t, model.StatusFinished, f.campaigns.campaigns[c.ID].Status)
	assert.Empty(t, f.mailer.sent)
}

func TestPrepareDispatchWindowExpiredRegardlessOfPriorStatus(t *testing.T) {
	for _, status := range []string{model.StatusCreated, model.StatusStarted, model.StatusFinished} {
		f := newFixture()
		c := f.addCampaign(status, true, frozenNow.Add(-time.Minute))

		err := f.svc.PrepareDispatch(c, ownerAccount())

		assert.Equal(t, apperrors.BlockedWindowExpired, apperrors.BlockedReason(err), "status %s", status)
		assert.Equal(t, model.StatusFinished, c.Status)
		assert.Equal(t, []string{model.StatusFinished}, f.campaigns.statusWrites)
	}
}

func TestPrepareDispatchDisabled(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, false, frozenNow.Add(time.Hour))

	err := f.svc.PrepareDispatch(c, ownerAccount())

	assert.Equal(t, apperrors.BlockedDisabled, apperrors.BlockedReason(err))
	assert.Equal(t, model.StatusFinished, c.Status)
	assert.Equal(t, []string{model.StatusFinished}, f.campaigns.statusWrites)
}

func TestPrepareDispatchAlreadyFinished(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusFinished, true, frozenNow.Add(time.Hour))

	err := f.svc.PrepareDispatch(c, ownerAccount())

	assert.Equal(t, apperrors.BlockedAlreadyFinished, apperrors.BlockedReason(err))
	assert.Empty(t, f.campaigns.statusWrites, "no status write for an already finished campaign")
}

func TestPrepareDispatchUnauthorized(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(-24*time.Hour))
	stranger := &model.Account{ID: 99, Active: true}

	err := f.svc.PrepareDispatch(c, stranger)

	// Authorization short-circuits before the window check, so the
	// expired window must not be persisted on behalf of a stranger.
	assert.Equal(t, apperrors.BlockedUnauthorized, apperrors.BlockedReason(err))
	assert.Equal(t, model.StatusCreated, c.Status)
	assert.Empty(t, f.campaigns.statusWrites)
}

func TestPrepareDispatchSendCapability(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	operator := &model.Account{ID: 50, Active: true, Permissions: []string{access.PermCampaignSend}}

	assert.NoError(t, f.svc.PrepareDispatch(c, operator))
}

// --- Dispatcher ---

func TestDispatchNoRecipients(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))

	report, err := f.svc.Dispatch(context.Background(), c)

	require.ErrorIs(t, err, apperrors.ErrNoRecipients)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, f.mailer.sent, "transport must not be contacted")
	assert.Empty(t, f.attempts.attempts)
}

func TestDispatchAllSucceed(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	f.campaigns.emails[c.ID] = []string{"a@example.com", "b@example.com", "c@example.com"}

	report, err := f.svc.Dispatch(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, model.StatusStarted, f.campaigns.campaigns[c.ID].Status)
	// Started is persisted once, on the first success only.
	assert.Equal(t, []string{model.StatusStarted}, f.campaigns.statusWrites)

	require.Len(t, f.attempts.attempts, 3)
	for _, a := range f.attempts.attempts {
		assert.Equal(t, model.AttemptSuccessful, a.Status)
		assert.Equal(t, service.DeliveredResponse, a.ServerResponse)
		assert.Equal(t, c.ID, a.CampaignID)
	}
}

func TestDispatchAllFail(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	f.campaigns.emails[c.ID] = []string{"a@example.com", "b@example.com"}
	f.mailer.fail = func(recipient string) error {
		return fmt.Errorf("connection refused: %s", recipient)
	}

	report, err := f.svc.Dispatch(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, 0, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, model.StatusCreated, f.campaigns.campaigns[c.ID].Status, "status unchanged when nothing was delivered")
	assert.Empty(t, f.campaigns.statusWrites)

	require.Len(t, f.attempts.attempts, 2)
	assert.Equal(t, "connection refused: a@example.com", f.attempts.attempts[0].ServerResponse)
}

func TestDispatchPartialFailureContinues(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	f.campaigns.emails[c.ID] = []string{"a@example.com", "b@example.com", "c@example.com"}
	f.mailer.fail = func(recipient string) error {
		if recipient == "b@example.com" {
			return fmt.Errorf("550 mailbox unavailable")
		}
		return nil
	}

	report, err := f.svc.Dispatch(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, model.StatusStarted, f.campaigns.campaigns[c.ID].Status)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, f.mailer.sent)

	require.Len(t, f.attempts.attempts, 3)
	assert.Equal(t, model.AttemptSuccessful, f.attempts.attempts[0].Status)
	assert.Equal(t, model.AttemptFailed, f.attempts.attempts[1].Status)
	assert.Equal(t, "550 mailbox unavailable", f.attempts.attempts[1].ServerResponse)
	assert.Equal(t, model.AttemptSuccessful, f.attempts.attempts[2].Status)
}

func TestSendCampaignNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendCampaign(context.Background(), ownerAccount(), 404)

	assert.True(t, apperrors.IsNotFound(err))
}

// --- Campaign CRUD guard rails ---

func TestCreateCampaignRejectsInvertedWindow(t *testing.T) {
	f := newFixture()

	err := f.svc.CreateCampaign(ownerAccount(), &model.Campaign{
		BeginAt:   frozenNow.Add(2 * time.Hour),
		EndAt:     frozenNow.Add(time.Hour),
		MessageID: 10,
	})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "end_at", ve.Field)
}

func TestCreateCampaignRejectsPastWindow(t *testing.T) {
	f := newFixture()

	err := f.svc.CreateCampaign(ownerAccount(), &model.Campaign{
		BeginAt:   frozenNow.Add(-2 * time.Hour),
		EndAt:     frozenNow.Add(-time.Hour),
		MessageID: 10,
	})

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDisableCampaignRequiresCapability(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	stranger := &model.Account{ID: 99, Active: true}

	err := f.svc.DisableCampaign(stranger, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrAccessDenied)
	assert.True(t, f.campaigns.campaigns[c.ID].Active)

	manager := &model.Account{ID: 50, Active: true, Permissions: []string{access.PermCampaignDisable}}
	require.NoError(t, f.svc.DisableCampaign(manager, c.ID))
	assert.False(t, f.campaigns.campaigns[c.ID].Active)
}

func TestDisabledCampaignBlockedOnNextDispatch(t *testing.T) {
	f := newFixture()
	c := f.addCampaign(model.StatusCreated, true, frozenNow.Add(time.Hour))
	f.campaigns.emails[c.ID] = []string{"a@example.com"}

	manager := &model.Account{ID: 50, Active: true, Permissions: []string{access.PermCampaignDisable}}
	require.NoError(t, f.svc.DisableCampaign(manager, c.ID))

	_, err := f.svc.SendCampaign(context.Background(), ownerAccount(), c.ID)

	assert.Equal(t, apperrors.BlockedDisabled, apperrors.BlockedReason(err))
	assert.Equal(t, model.StatusFinished, f.campaigns.campaigns[c.ID].Status)
	assert.Empty(t, f.mailer.sent)
}
