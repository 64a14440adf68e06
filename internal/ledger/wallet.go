// Package ledger holds the credit-side decision logic: the wallet balance
// reduction and the guard that approves or rejects a prospective customer
// invoice. Everything here is a pure computation over inputs supplied by
// the storage and accounting collaborators.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/entity"
)

// WalletBalance sums the signed amounts of the supplied movements. The
// caller filters to the right (partner, company) scope before invoking;
// this stays a plain reduction.
func WalletBalance(moves []entity.WalletMove) decimal.Decimal {
	total := decimal.Zero
	for _, m := range moves {
		total = total.Add(m.Amount)
	}
	return total
}

// WalletCount reports the number of movements (the wallet stat counter).
func WalletCount(moves []entity.WalletMove) int {
	return len(moves)
}
