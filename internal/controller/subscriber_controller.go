// internal/controller/subscriber_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/brightpost/mailing-backend/internal/auth"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/service"
)

type SubscriberController struct {
	SubscriberService *service.SubscriberService
}

func (c *SubscriberController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Comment  string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	sub := &model.Subscriber{Email: body.Email, FullName: body.FullName, Comment: body.Comment}
	actor := auth.ActorFromContext(r.Context())
	if err := c.SubscriberService.Create(actor, sub); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (c *SubscriberController) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	subscribers, err := c.SubscriberService.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": subscribers})
}

func (c *SubscriberController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid subscriber id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	sub, err := c.SubscriberService.Get(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (c *SubscriberController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid subscriber id", http.StatusBadRequest)
		return
	}
	var body struct {
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Comment  string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	sub, err := c.SubscriberService.Update(actor, &model.Subscriber{
		ID:       id,
		Email:    body.Email,
		FullName: body.FullName,
		Comment:  body.Comment,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (c *SubscriberController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid subscriber id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if err := c.SubscriberService.Delete(actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
