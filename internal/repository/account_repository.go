package repository

import (
	"database/sql"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
)

type AccountRepositoryInterface interface {
	GetByID(id int) (*model.Account, error)
	GetByToken(token string) (*model.Account, error)
	Create(a *model.Account) error
	Activate(id int) error
}

type AccountRepository struct {
	DB *sql.DB
}

func (r *AccountRepository) Create(a *model.Account) error {
	query := `
        INSERT INTO accounts (email, display_name, active, verify_token, created_at)
        VALUES ($1, $2, $3, $4, NOW())
        RETURNING id, created_at
    `
	return r.DB.QueryRow(query, a.Email, a.DisplayName, a.Active, a.VerifyToken).
		Scan(&a.ID, &a.CreatedAt)
}

func (r *AccountRepository) GetByID(id int) (*model.Account, error) {
	query := `
        SELECT id, email, display_name, active, verify_token, created_at
        FROM accounts WHERE id=$1
    `
	a, err := r.scanAccount(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("account", id)
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) GetByToken(token string) (*model.Account, error) {
	query := `
        SELECT id, email, display_name, active, verify_token, created_at
        FROM accounts WHERE verify_token=$1
    `
	a, err := r.scanAccount(r.DB.QueryRow(query, token))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("account", 0)
		}
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) Activate(id int) error {
	_, err := r.DB.Exec(`UPDATE accounts SET active=true WHERE id=$1`, id)
	return err
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &a.Active, &a.VerifyToken, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadGrants(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// loadGrants fills Groups and the effective Permissions set: direct
// grants plus the grants of every group the account belongs to.
func (r *AccountRepository) loadGrants(a *model.Account) error {
	rows, err := r.DB.Query(`SELECT group_name FROM account_groups WHERE account_id=$1`, a.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return err
		}
		a.Groups = append(a.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	permQuery := `
        SELECT permission FROM account_permissions WHERE account_id=$1
        UNION
        SELECT gp.permission
        FROM group_permissions gp
        JOIN account_groups ag ON ag.group_name = gp.group_name
        WHERE ag.account_id=$1
    `
	permRows, err := r.DB.Query(permQuery, a.ID)
	if err != nil {
		return err
	}
	defer permRows.Close()
	for permRows.Next() {
		var p string
		if err := permRows.Scan(&p); err != nil {
			return err
		}
		a.Permissions = append(a.Permissions, p)
	}
	return permRows.Err()
}

var _ AccountRepositoryInterface = (*AccountRepository)(nil)
