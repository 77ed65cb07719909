// internal/model/campaign.go
package model

import "time"

const (
	StatusCreated  = "created"
	StatusStarted  = "started"
	StatusFinished = "finished"
)

// Campaign is a scheduled mailing of one Message to a set of Subscribers
// within the [BeginAt, EndAt] window.
type Campaign struct {
	ID            int       `db:"id" json:"id"`
	BeginAt       time.Time `db:"begin_at" json:"begin_at"`
	EndAt         time.Time `db:"end_at" json:"end_at"`
	Status        string    `db:"status" json:"status"`
	Active        bool      `db:"active" json:"active"`
	OwnerID       *int      `db:"owner_id" json:"owner_id,omitempty"`
	MessageID     int       `db:"message_id" json:"message_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	SubscriberIDs []int     `json:"subscriber_ids,omitempty"`
}
