package repository

import (
	"database/sql"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	GetByID(id int) (*model.Campaign, error)
	ListAll() ([]model.Campaign, error)
	ListByOwner(ownerID int) ([]model.Campaign, error)
	Create(c *model.Campaign) error
	Update(c *model.Campaign) error
	UpdateStatus(campaignID int, status string) error
	SetActive(campaignID int, active bool) error
	Delete(id int) error
	SubscriberEmails(campaignID int) ([]string, error)
	CountAll() (int, error)
	CountByStatus(status string) (int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, begin_at, end_at, status, active, owner_id, message_id, created_at`

// Create inserts the campaign and its subscriber set in one transaction.
func (r *CampaignRepository) Create(c *model.Campaign) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if c.Status == "" {
		c.Status = model.StatusCreated
	}
	query := `
        INSERT INTO campaigns (begin_at, end_at, status, active, owner_id, message_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	err = tx.QueryRow(query, c.BeginAt, c.EndAt, c.Status, c.Active, c.OwnerID, c.MessageID).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return err
	}

	if err := insertCampaignSubscribers(tx, c.ID, c.SubscriberIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the mutable fields and replaces the subscriber set.
func (r *CampaignRepository) Update(c *model.Campaign) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
        UPDATE campaigns
        SET begin_at=$1, end_at=$2, status=$3, active=$4, message_id=$5
        WHERE id=$6
    `
	if _, err := tx.Exec(query, c.BeginAt, c.EndAt, c.Status, c.Active, c.MessageID, c.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM campaign_subscribers WHERE campaign_id=$1`, c.ID); err != nil {
		return err
	}
	if err := insertCampaignSubscribers(tx, c.ID, c.SubscriberIDs); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCampaignSubscribers(tx *sql.Tx, campaignID int, subscriberIDs []int) error {
	for _, sid := range subscriberIDs {
		_, err := tx.Exec(
			`INSERT INTO campaign_subscribers (campaign_id, subscriber_id) VALUES ($1, $2)`,
			campaignID, sid,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepository) UpdateStatus(campaignID int, status string) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET status=$1 WHERE id=$2`, status, campaignID)
	return err
}

func (r *CampaignRepository) SetActive(campaignID int, active bool) error {
	_, err := r.DB.Exec(`UPDATE campaigns SET active=$1 WHERE id=$2`, active, campaignID)
	return err
}

func (r *CampaignRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	return err
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id=$1`
	var c model.Campaign
	err := r.DB.QueryRow(query, id).Scan(
		&c.ID, &c.BeginAt, &c.EndAt, &c.Status, &c.Active,
		&c.OwnerID, &c.MessageID, &c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("campaign", id)
		}
		return nil, err
	}

	rows, err := r.DB.Query(
		`SELECT subscriber_id FROM campaign_subscribers WHERE campaign_id=$1 ORDER BY subscriber_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid int
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		c.SubscriberIDs = append(c.SubscriberIDs, sid)
	}
	return &c, rows.Err()
}

func (r *CampaignRepository) ListAll() ([]model.Campaign, error) {
	return r.list(`SELECT ` + campaignColumns + ` FROM campaigns ORDER BY begin_at DESC`)
}

func (r *CampaignRepository) ListByOwner(ownerID int) ([]model.Campaign, error) {
	return r.list(`SELECT `+campaignColumns+` FROM campaigns WHERE owner_id=$1 ORDER BY begin_at DESC`, ownerID)
}

// SubscriberEmails resolves the current member set of the campaign to
// recipient addresses.
func (r *CampaignRepository) SubscriberEmails(campaignID int) ([]string, error) {
	query := `
        SELECT s.email
        FROM campaign_subscribers cs
        JOIN subscribers s ON s.id = cs.subscriber_id
        WHERE cs.campaign_id=$1
    `
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := []string{}
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}

func (r *CampaignRepository) CountAll() (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns`).Scan(&n)
	return n, err
}

func (r *CampaignRepository) CountByStatus(status string) (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM campaigns WHERE status=$1`, status).Scan(&n)
	return n, err
}

func (r *CampaignRepository) list(query string, args ...interface{}) ([]model.Campaign, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []model.Campaign{}
	for rows.Next() {
		var c model.Campaign
		err := rows.Scan(
			&c.ID, &c.BeginAt, &c.EndAt, &c.Status, &c.Active,
			&c.OwnerID, &c.MessageID, &c.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
