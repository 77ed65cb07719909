package repository

import (
	"database/sql"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
)

type SubscriberRepositoryInterface interface {
	GetByID(id int) (*model.Subscriber, error)
	ListAll() ([]model.Subscriber, error)
	ListByOwner(ownerID int) ([]model.Subscriber, error)
	Create(s *model.Subscriber) error
	Update(s *model.Subscriber) error
	Delete(id int) error
	CountAll() (int, error)
}

type SubscriberRepository struct {
	DB *sql.DB
}

const subscriberColumns = `id, email, full_name, comment, owner_id, created_at`

func (r *SubscriberRepository) Create(s *model.Subscriber) error {
	query := `
        INSERT INTO subscribers (email, full_name, comment, owner_id, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query, s.Email, s.FullName, s.Comment, s.OwnerID).
		Scan(&s.ID, &s.CreatedAt)
}

func (r *SubscriberRepository) Update(s *model.Subscriber) error {
	query := `UPDATE subscribers SET email=$1, full_name=$2, comment=$3 WHERE id=$4`
	_, err := r.DB.Exec(query, s.Email, s.FullName, s.Comment, s.ID)
	return err
}

func (r *SubscriberRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM subscribers WHERE id=$1`, id)
	return err
}

func (r *SubscriberRepository) GetByID(id int) (*model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE id=$1`
	var s model.Subscriber
	err := r.DB.QueryRow(query, id).
		Scan(&s.ID, &s.Email, &s.FullName, &s.Comment, &s.OwnerID, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("subscriber", id)
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriberRepository) ListAll() ([]model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers ORDER BY id`
	return r.list(query)
}

func (r *SubscriberRepository) ListByOwner(ownerID int) ([]model.Subscriber, error) {
	query := `SELECT ` + subscriberColumns + ` FROM subscribers WHERE owner_id=$1 ORDER BY id`
	return r.list(query, ownerID)
}

func (r *SubscriberRepository) CountAll() (int, error) {
	var n int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&n)
	return n, err
}

func (r *SubscriberRepository) list(query string, args ...interface{}) ([]model.Subscriber, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subscribers := []model.Subscriber{}
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.FullName, &s.Comment, &s.OwnerID, &s.CreatedAt); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, s)
	}
	return subscribers, rows.Err()
}

var _ SubscriberRepositoryInterface = (*SubscriberRepository)(nil)
