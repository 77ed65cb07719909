// internal/model/subscriber.go
package model

import "time"

type Subscriber struct {
	ID        int       `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	OwnerID   *int      `db:"owner_id" json:"owner_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
