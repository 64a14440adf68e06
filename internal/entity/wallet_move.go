package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletMove is a single signed movement on a customer's wallet, scoped to
// one (partner, company) pair. Positive credits the customer, negative
// spends/allocates. Moves are immutable once created.
type WalletMove struct {
	ID        uuid.UUID       `json:"id"`
	PartnerID uuid.UUID       `json:"partner_id"`
	CompanyID uuid.UUID       `json:"company_id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
	InvoiceID *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
