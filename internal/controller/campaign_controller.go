// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/auth"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/service"
)

type CampaignController struct {
	MailingService *service.MailingService
}

func urlID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func (c *CampaignController) Home(w http.ResponseWriter, r *http.Request) {
	stats, err := c.MailingService.Home()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BeginAt       time.Time `json:"begin_at"`
		EndAt         time.Time `json:"end_at"`
		MessageID     int       `json:"message_id"`
		SubscriberIDs []int     `json:"subscriber_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	campaign := &model.Campaign{
		BeginAt:       body.BeginAt,
		EndAt:         body.EndAt,
		MessageID:     body.MessageID,
		SubscriberIDs: body.SubscriberIDs,
	}
	actor := auth.ActorFromContext(r.Context())
	if err := c.MailingService.CreateCampaign(actor, campaign); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, campaign)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	campaigns, err := c.MailingService.ListCampaigns(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": campaigns})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	campaign, err := c.MailingService.GetCampaign(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	var body struct {
		BeginAt       time.Time `json:"begin_at"`
		EndAt         time.Time `json:"end_at"`
		MessageID     int       `json:"message_id"`
		SubscriberIDs []int     `json:"subscriber_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	campaign, err := c.MailingService.UpdateCampaign(actor, &model.Campaign{
		ID:            id,
		BeginAt:       body.BeginAt,
		EndAt:         body.EndAt,
		MessageID:     body.MessageID,
		SubscriberIDs: body.SubscriberIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (c *CampaignController) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if err := c.MailingService.DeleteCampaign(actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *CampaignController) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	report, err := c.MailingService.SendCampaign(r.Context(), actor, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoRecipients) {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"campaign_id": id,
				"sent":        0,
				"failed":      0,
				"warning":     "campaign has no recipients",
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (c *CampaignController) DisableCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if err := c.MailingService.DisableCampaign(actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "campaign disabled"})
}

func (c *CampaignController) ListAttempts(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	attempts, err := c.MailingService.ListAttempts(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": attempts})
}
