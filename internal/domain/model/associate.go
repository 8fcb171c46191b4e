package model

import (
	"time"
)

// Associate is a registered member, distinct from the User accounts
// that authenticate against the API.
type Associate struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CPF       string    `json:"cpf"`
	Email     string    `json:"email"`
	Telephone string    `json:"telephone"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}
