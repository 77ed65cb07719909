// internal/service/mailing_service.go
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/brightpost/mailing-backend/internal/access"
	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/events"
	"github.com/brightpost/mailing-backend/internal/mailer"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/repository"
)

// DeliveredResponse is the fixed server-response text recorded on a
// successful attempt.
const DeliveredResponse = "message delivered"

// DispatchReport aggregates per-recipient outcomes of one dispatch.
type DispatchReport struct {
	CampaignID int `json:"campaign_id"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

// HomeStats backs the landing page counters.
type HomeStats struct {
	TotalCampaigns   int `json:"total_campaigns"`
	StartedCampaigns int `json:"started_campaigns"`
	Subscribers      int `json:"subscribers"`
}

type MailingService struct {
	CampaignRepo   repository.CampaignRepositoryInterface
	SubscriberRepo repository.SubscriberRepositoryInterface
	MessageRepo    repository.MessageRepositoryInterface
	AttemptRepo    repository.AttemptRepositoryInterface
	Access         *access.Resolver
	Mailer         mailer.Mailer
	Events         events.Publisher
	From           string

	// Now is swappable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *MailingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ====================== Lifecycle guard ======================

// PrepareDispatch re-evaluates on every dispatch request whether the
// campaign is still sendable. Checks short-circuit in order; the
// expired and disabled cases persist the finished transition before
// refusing.
func (s *MailingService) PrepareDispatch(campaign *model.Campaign, actor *model.Account) error {
	if err := s.Access.Authorize(actor, campaign.OwnerID, access.PermCampaignSend); err != nil {
		return apperrors.NewBlocked(apperrors.BlockedUnauthorized)
	}

	if s.now().After(campaign.EndAt) {
		campaign.Status = model.StatusFinished
		if err := s.CampaignRepo.UpdateStatus(campaign.ID, model.StatusFinished); err != nil {
			return err
		}
		return apperrors.NewBlocked(apperrors.BlockedWindowExpired)
	}

	if !campaign.Active {
		campaign.Status = model.StatusFinished
		if err := s.CampaignRepo.UpdateStatus(campaign.ID, model.StatusFinished); err != nil {
			return err
		}
		return apperrors.NewBlocked(apperrors.BlockedDisabled)
	}

	if campaign.Status == model.StatusFinished {
		return apperrors.NewBlocked(apperrors.BlockedAlreadyFinished)
	}

	return nil
}

// ====================== Dispatcher ======================

// Dispatch fans the campaign's message out to its current subscriber
// set, one transport call per recipient, strictly sequential. Every
// recipient gets exactly one attempt row; a transport failure records
// the error text verbatim and the batch continues. The campaign moves
// to started on the first successful send only.
func (s *MailingService) Dispatch(ctx context.Context, campaign *model.Campaign) (*DispatchReport, error) {
	message, err := s.MessageRepo.GetByID(campaign.MessageID)
	if err != nil {
		return nil, err
	}

	recipients, err := s.CampaignRepo.SubscriberEmails(campaign.ID)
	if err != nil {
		return nil, err
	}

	report := &DispatchReport{CampaignID: campaign.ID}
	if len(recipients) == 0 {
		return report, apperrors.ErrNoRecipients
	}

	for _, email := range recipients {
		attempt := &model.Attempt{
			AttemptedAt: s.now(),
			CampaignID:  campaign.ID,
		}

		sendErr := s.Mailer.Send(ctx, message.Subject, message.Body, s.From, []string{email})
		if sendErr != nil {
			attempt.Status = model.AttemptFailed
			attempt.ServerResponse = sendErr.Error()
			report.Failed++
			log.Warn().Int("campaign_id", campaign.ID).Str("recipient", email).
				Err(sendErr).Msg("send failed")
		} else {
			if campaign.Status != model.StatusStarted {
				campaign.Status = model.StatusStarted
				if err := s.CampaignRepo.UpdateStatus(campaign.ID, model.StatusStarted); err != nil {
					log.Error().Int("campaign_id", campaign.ID).Err(err).
						Msg("failed to persist started status")
				}
			}
			attempt.Status = model.AttemptSuccessful
			attempt.ServerResponse = DeliveredResponse
			report.Sent++
		}

		if err := s.AttemptRepo.Create(attempt); err != nil {
			log.Error().Int("campaign_id", campaign.ID).Err(err).Msg("failed to record attempt")
		}
		if err := s.Events.Publish("attempt", events.AttemptEvent{
			CampaignID: campaign.ID,
			Recipient:  email,
			Status:     attempt.Status,
			Response:   attempt.ServerResponse,
		}); err != nil {
			log.Debug().Err(err).Msg("attempt event publish failed")
		}
	}

	if err := s.Events.Publish("dispatch_report", events.DispatchReportEvent{
		CampaignID: campaign.ID,
		Sent:       report.Sent,
		Failed:     report.Failed,
		At:         s.now(),
	}); err != nil {
		log.Debug().Err(err).Msg("dispatch report publish failed")
	}

	return report, nil
}

// SendCampaign is the full dispatch path shared by the web route and
// the CLI: lookup, lifecycle guard, fan-out.
func (s *MailingService) SendCampaign(ctx context.Context, actor *model.Account, campaignID int) (*DispatchReport, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.PrepareDispatch(campaign, actor); err != nil {
		return nil, err
	}
	return s.Dispatch(ctx, campaign)
}

// ====================== Campaign CRUD ======================

func (s *MailingService) validateWindow(beginAt, endAt time.Time) error {
	if endAt.Before(beginAt) {
		return apperrors.NewValidation("end_at", "must not be before begin_at")
	}
	if endAt.Before(s.now()) {
		return apperrors.NewValidation("end_at", "must not be in the past")
	}
	return nil
}

func (s *MailingService) CreateCampaign(actor *model.Account, c *model.Campaign) error {
	if err := s.validateWindow(c.BeginAt, c.EndAt); err != nil {
		return err
	}
	if _, err := s.MessageRepo.GetByID(c.MessageID); err != nil {
		return err
	}
	c.Status = model.StatusCreated
	c.Active = true
	c.OwnerID = &actor.ID
	return s.CampaignRepo.Create(c)
}

func (s *MailingService) GetCampaign(actor *model.Account, id int) (*model.Campaign, error) {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, campaign.OwnerID, access.PermCampaignView); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *MailingService) ListCampaigns(ctx context.Context, actor *model.Account) ([]model.Campaign, error) {
	return access.FilterList(ctx, s.Access, actor, "campaign",
		s.CampaignRepo.ListAll, s.CampaignRepo.ListByOwner)
}

// UpdateCampaign rewrites window, message and subscriber set. Status and
// active flag are not client-writable here.
func (s *MailingService) UpdateCampaign(actor *model.Account, c *model.Campaign) (*model.Campaign, error) {
	current, err := s.CampaignRepo.GetByID(c.ID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, current.OwnerID, access.PermCampaignChange); err != nil {
		return nil, err
	}
	if err := s.validateWindow(c.BeginAt, c.EndAt); err != nil {
		return nil, err
	}
	if _, err := s.MessageRepo.GetByID(c.MessageID); err != nil {
		return nil, err
	}

	current.BeginAt = c.BeginAt
	current.EndAt = c.EndAt
	current.MessageID = c.MessageID
	current.SubscriberIDs = c.SubscriberIDs
	if err := s.CampaignRepo.Update(current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *MailingService) DeleteCampaign(actor *model.Account, id int) error {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Access.Authorize(actor, campaign.OwnerID, access.PermCampaignDelete); err != nil {
		return err
	}
	return s.CampaignRepo.Delete(id)
}

// DisableCampaign clears the active flag; the lifecycle guard turns
// that into a finished transition on the next dispatch attempt.
func (s *MailingService) DisableCampaign(actor *model.Account, id int) error {
	campaign, err := s.CampaignRepo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Access.Authorize(actor, campaign.OwnerID, access.PermCampaignDisable); err != nil {
		return err
	}
	if err := s.CampaignRepo.SetActive(id, false); err != nil {
		return err
	}
	log.Info().Int("campaign_id", id).Int("actor_id", actor.ID).Msg("campaign disabled")
	return nil
}

func (s *MailingService) ListAttempts(actor *model.Account, campaignID int) ([]model.Attempt, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if err := s.Access.Authorize(actor, campaign.OwnerID, access.PermCampaignView); err != nil {
		return nil, err
	}
	return s.AttemptRepo.ListByCampaign(campaignID)
}

func (s *MailingService) Home() (*HomeStats, error) {
	total, err := s.CampaignRepo.CountAll()
	if err != nil {
		return nil, err
	}
	started, err := s.CampaignRepo.CountByStatus(model.StatusStarted)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.SubscriberRepo.CountAll()
	if err != nil {
		return nil, err
	}
	return &HomeStats{
		TotalCampaigns:   total,
		StartedCampaigns: started,
		Subscribers:      subscribers,
	}, nil
}
