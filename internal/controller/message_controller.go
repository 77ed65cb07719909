// internal/controller/message_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/brightpost/mailing-backend/internal/auth"
	"github.com/brightpost/mailing-backend/internal/model"
	"github.com/brightpost/mailing-backend/internal/service"
)

type MessageController struct {
	MessageService *service.MessageService
}

func (c *MessageController) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	m := &model.Message{Subject: body.Subject, Body: body.Body}
	actor := auth.ActorFromContext(r.Context())
	if err := c.MessageService.Create(actor, m); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (c *MessageController) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFromContext(r.Context())
	messages, err := c.MessageService.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": messages})
}

func (c *MessageController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	m, err := c.MessageService.Get(actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (c *MessageController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	var body struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	actor := auth.ActorFromContext(r.Context())
	m, err := c.MessageService.Update(actor, &model.Message{
		ID:      id,
		Subject: body.Subject,
		Body:    body.Body,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (c *MessageController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	actor := auth.ActorFromContext(r.Context())
	if err := c.MessageService.Delete(actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
