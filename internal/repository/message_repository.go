package repository

import (
	"database/sql"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
)

type MessageRepositoryInterface interface {
	GetByID(id int) (*model.Message, error)
	ListAll() ([]model.Message, error)
	ListByOwner(ownerID int) ([]model.Message, error)
	Create(m *model.Message) error
	Update(m *model.Message) error
	Delete(id int) error
}

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) Create(m *model.Message) error {
	query := `
        INSERT INTO messages (subject, body, owner_id, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query, m.Subject, m.Body, m.OwnerID).Scan(&m.ID, &m.CreatedAt)
}

func (r *MessageRepository) Update(m *model.Message) error {
	query := `UPDATE messages SET subject=$1, body=$2 WHERE id=$3`
	_, err := r.DB.Exec(query, m.Subject, m.Body, m.ID)
	return err
}

// Delete removes the message; campaigns referencing it are cascaded
// away by the schema.
func (r *MessageRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM messages WHERE id=$1`, id)
	return err
}

func (r *MessageRepository) GetByID(id int) (*model.Message, error) {
	query := `SELECT id, subject, body, owner_id, created_at FROM messages WHERE id=$1`
	var m model.Message
	err := r.DB.QueryRow(query, id).Scan(&m.ID, &m.Subject, &m.Body, &m.OwnerID, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("message", id)
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) ListAll() ([]model.Message, error) {
	return r.list(`SELECT id, subject, body, owner_id, created_at FROM messages ORDER BY id`)
}

func (r *MessageRepository) ListByOwner(ownerID int) ([]model.Message, error) {
	return r.list(`SELECT id, subject, body, owner_id, created_at FROM messages WHERE owner_id=$1 ORDER BY id`, ownerID)
}

func (r *MessageRepository) list(query string, args ...interface{}) ([]model.Message, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.Subject, &m.Body, &m.OwnerID, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

var _ MessageRepositoryInterface = (*MessageRepository)(nil)
