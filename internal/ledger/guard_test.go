package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestAuthorize_OnHoldBlocksUnconditionally(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{name: "positive amount", amount: "1500"},
		{name: "zero amount", amount: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := GuardRequest{
				PartnerID:   uuid.New(),
				PartnerName: "Acme Motors",
				OnHold:      true,
				CreditLimit: d("1000000"),
				Amount:      d(tt.amount),
			}
			_, err := Authorize(req)
			var onHold *OnHoldError
			require.ErrorAs(t, err, &onHold)
			assert.Equal(t, req.PartnerID, onHold.PartnerID)
		})
	}
}

func TestAuthorize_CreditLimit(t *testing.T) {
	base := GuardRequest{
		PartnerID:         uuid.New(),
		PartnerName:       "Acme Motors",
		CreditLimit:       d("5000"),
		ReceivableBalance: d("4000"),
		Amount:            d("1500"),
	}

	t.Run("exceeded without wallet offset", func(t *testing.T) {
		req := base
		req.WalletBalance = decimal.Zero

		_, err := Authorize(req)
		var exceeded *CreditLimitExceededError
		require.ErrorAs(t, err, &exceeded)
		assert.True(t, exceeded.Projected.Equal(d("5500")), "projected = %s", exceeded.Projected)
		assert.True(t, exceeded.CreditLimit.Equal(d("5000")))
		assert.True(t, exceeded.ReceivableBalance.Equal(d("4000")))
	})

	t.Run("wallet offset brings it under the limit", func(t *testing.T) {
		req := base
		req.WalletBalance = d("600")

		approval, err := Authorize(req)
		require.NoError(t, err)
		assert.True(t, approval.Projected.Equal(d("4900")), "projected = %s", approval.Projected)
	})

	t.Run("projected exactly at the limit passes", func(t *testing.T) {
		req := base
		req.WalletBalance = d("500")

		approval, err := Authorize(req)
		require.NoError(t, err)
		assert.True(t, approval.Projected.Equal(d("5000")))
	})
}

func TestAuthorize_ZeroLimitMeansUnlimited(t *testing.T) {
	req := GuardRequest{
		PartnerID:         uuid.New(),
		CreditLimit:       decimal.Zero,
		ReceivableBalance: d("9000000"),
		Amount:            d("1000000"),
	}
	approval, err := Authorize(req)
	require.NoError(t, err)
	assert.True(t, approval.Projected.Equal(d("10000000")))
}

func TestAuthorize_NegativeReceivable(t *testing.T) {
	// A customer in credit (negative AR) leaves plenty of headroom.
	req := GuardRequest{
		PartnerID:         uuid.New(),
		CreditLimit:       d("1000"),
		ReceivableBalance: d("-500"),
		Amount:            d("1200"),
	}
	approval, err := Authorize(req)
	require.NoError(t, err)
	assert.True(t, approval.Projected.Equal(d("700")))
}
