// internal/model/attempt.go
package model

import "time"

const (
	AttemptSuccessful = "successful"
	AttemptFailed     = "failed"
)

// Attempt is an append-only record of one recipient-level send outcome.
// Rows are never mutated or deleted individually; deleting the campaign
// cascades them away.
type Attempt struct {
	ID             int       `db:"id" json:"id"`
	AttemptedAt    time.Time `db:"attempted_at" json:"attempted_at"`
	Status         string    `db:"status" json:"status"`
	ServerResponse string    `db:"server_response" json:"server_response"`
	CampaignID     int       `db:"campaign_id" json:"campaign_id"`
}
