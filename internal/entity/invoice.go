package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice kinds and states, persisted as strings.
const (
	InvoiceKindVendorBill      = "vendor_bill"
	InvoiceKindCustomerInvoice = "customer_invoice"

	InvoiceStateDraft     = "draft"
	InvoiceStatePosted    = "posted"
	InvoiceStateCancelled = "cancelled"
)

// Invoice is the accounting document created from a vehicle: a vendor bill
// on the purchase side or a customer invoice on the sale side.
type Invoice struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	State       string          `json:"state"`
	PartnerID   uuid.UUID       `json:"partner_id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	VehicleID   *uuid.UUID      `json:"vehicle_id,omitempty"`
	InvoiceDate time.Time       `json:"invoice_date"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency_code"`
	Description string          `json:"description,omitempty"`
	Origin      string          `json:"origin,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// LedgerLine is a receivable-side account move line supplied by the
// accounting collaborator. Lines whose ParentState is cancelled do not
// count toward the live receivable balance.
type LedgerLine struct {
	ID          uuid.UUID       `json:"id"`
	PartnerID   uuid.UUID       `json:"partner_id"`
	CompanyID   uuid.UUID       `json:"company_id"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	AccountType string          `json:"account_type"`
	ParentState string          `json:"parent_state"`
	Balance     decimal.Decimal `json:"balance"`
	CreatedAt   time.Time       `json:"created_at"`
}

// AccountTypeReceivable is the account type whose lines make up a
// customer's outstanding balance.
const AccountTypeReceivable = "asset_receivable"
