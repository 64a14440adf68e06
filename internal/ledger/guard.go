package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GuardRequest is assembled fresh for each authorization: the customer's
// credit profile, the live receivable balance, the wallet balance, and the
// amount of the invoice about to be created. Balances are signed, in the
// company currency.
type GuardRequest struct {
	PartnerID         uuid.UUID
	PartnerName       string
	CompanyID         uuid.UUID
	ReceivableBalance decimal.Decimal
	WalletBalance     decimal.Decimal
	CreditLimit       decimal.Decimal
	OnHold            bool
	Amount            decimal.Decimal
}

// Approval carries the projected figures for the caller to log or audit.
type Approval struct {
	PartnerID         uuid.UUID
	ReceivableBalance decimal.Decimal
	WalletBalance     decimal.Decimal
	Projected         decimal.Decimal
}

// OnHoldError blocks invoice creation for an on-hold customer, regardless
// of amounts.
type OnHoldError struct {
	PartnerID   uuid.UUID
	PartnerName string
}

func (e *OnHoldError) Error() string {
	return fmt.Sprintf("ledger: customer %s is on hold; cannot create an invoice", e.PartnerName)
}

// CreditLimitExceededError reports a projected receivable balance above the
// customer's credit limit, with the figures the caller needs to format a
// user-facing message.
type CreditLimitExceededError struct {
	PartnerID         uuid.UUID
	PartnerName       string
	CreditLimit       decimal.Decimal
	ReceivableBalance decimal.Decimal
	WalletBalance     decimal.Decimal
	Projected         decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("ledger: credit limit exceeded for customer %s: limit %s, current AR %s, wallet %s, projected %s",
		e.PartnerName, e.CreditLimit, e.ReceivableBalance, e.WalletBalance, e.Projected)
}

// Authorize decides whether a prospective invoice may be created.
//
// The on-hold flag is checked first and unconditionally, even for a zero
// amount. Otherwise the projected balance is the current receivable plus
// the candidate amount minus the wallet balance; the wallet is a pure
// offset, whether or not any movement relates to this transaction. A zero
// credit limit means unlimited.
func Authorize(req GuardRequest) (Approval, error) {
	if req.OnHold {
		return Approval{}, &OnHoldError{PartnerID: req.PartnerID, PartnerName: req.PartnerName}
	}

	projected := req.ReceivableBalance.Add(req.Amount).Sub(req.WalletBalance)

	if !req.CreditLimit.IsZero() && projected.GreaterThan(req.CreditLimit) {
		return Approval{}, &CreditLimitExceededError{
			PartnerID:         req.PartnerID,
			PartnerName:       req.PartnerName,
			CreditLimit:       req.CreditLimit,
			ReceivableBalance: req.ReceivableBalance,
			WalletBalance:     req.WalletBalance,
			Projected:         projected,
		}
	}

	return Approval{
		PartnerID:         req.PartnerID,
		ReceivableBalance: req.ReceivableBalance,
		WalletBalance:     req.WalletBalance,
		Projected:         projected,
	}, nil
}
