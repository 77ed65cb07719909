package repository

import (
	"database/sql"

	"github.com/brightpost/mailing-backend/internal/model"
)

type AttemptRepositoryInterface interface {
	Create(a *model.Attempt) error
	ListByCampaign(campaignID int) ([]model.Attempt, error)
}

type AttemptRepository struct {
	DB *sql.DB
}

// Create appends one attempt row. Attempts are never updated or deleted
// individually.
func (r *AttemptRepository) Create(a *model.Attempt) error {
	query := `
        INSERT INTO attempts (attempted_at, status, server_response, campaign_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	return r.DB.QueryRow(query, a.AttemptedAt, a.Status, a.ServerResponse, a.CampaignID).
		Scan(&a.ID)
}

// ListByCampaign returns the campaign's attempts newest-first.
func (r *AttemptRepository) ListByCampaign(campaignID int) ([]model.Attempt, error) {
	query := `
        SELECT id, attempted_at, status, server_response, campaign_id
        FROM attempts
        WHERE campaign_id=$1
        ORDER BY attempted_at DESC, id DESC
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.AttemptedAt, &a.Status, &a.ServerResponse, &a.CampaignID); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

var _ AttemptRepositoryInterface = (*AttemptRepository)(nil)
