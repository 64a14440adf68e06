package vehicle

import "github.com/shopspring/decimal"

// TotalCost is the full acquisition cost: purchase price plus auction fees
// plus other fees.
func TotalCost(purchasePrice, auctionFees, otherFees decimal.Decimal) decimal.Decimal {
	return purchasePrice.Add(auctionFees).Add(otherFees)
}

// Profit computes (sale − total cost − repair estimate), where sale is the
// actual sale price when it is nonzero and the expected sale price
// otherwise. An actual price of exactly zero means "not sold yet" and falls
// back to the expected price; that quirk is load-bearing and covered by a
// regression test.
func Profit(actualSalePrice, expectedSalePrice, totalCost, repairEstimate decimal.Decimal) decimal.Decimal {
	sale := actualSalePrice
	if sale.IsZero() {
		sale = expectedSalePrice
	}
	return sale.Sub(totalCost).Sub(repairEstimate)
}
