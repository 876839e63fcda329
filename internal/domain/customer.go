package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AnonymousCustomerName is shown for sales registered without a customer.
const AnonymousCustomerName = "Cliente General"

// Customer is an optional buyer attached to a sale.
type Customer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Document     string    `json:"document" db:"document"`
	DocumentType string    `json:"document_type" db:"document_type"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Email        string    `json:"email" db:"email"`
	Phone        string    `json:"phone" db:"phone"`
	Address      string    `json:"address" db:"address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
