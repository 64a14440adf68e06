package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a counterparty: a customer (buyer), a seller, or both.
type Partner struct {
	ID        uuid.UUID `json:"id"`
	CompanyID uuid.UUID `json:"company_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`

	// Credit profile. A zero credit limit means unlimited; OnHold blocks
	// new customer invoices unconditionally.
	CreditLimit decimal.Decimal `json:"credit_limit"`
	OnHold      bool            `json:"on_hold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
