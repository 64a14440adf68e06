package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Vehicle represents a tracked vehicle for data transfer between layers.
// TotalCost and Profit are derived by the costing functions and are never
// accepted as input.
type Vehicle struct {
	ID         uuid.UUID `json:"id"`
	CompanyID  uuid.UUID `json:"company_id"`
	Reference  string    `json:"reference"`
	VIN        string    `json:"vin"`
	VINCheckOK bool      `json:"vin_check_ok"`

	// Descriptive
	Year          string  `json:"year,omitempty"`
	Make          string  `json:"make,omitempty"`
	Model         string  `json:"model,omitempty"`
	Trim          string  `json:"trim,omitempty"`
	BodyType      string  `json:"body_type,omitempty"`
	ExteriorColor string  `json:"exterior_color,omitempty"`
	Distance      float64 `json:"distance_travelled"`
	DistanceUnit  string  `json:"distance_uom"`
	Notes         string  `json:"notes,omitempty"`

	// Acquisition
	PurchaseDate   *time.Time      `json:"purchase_date,omitempty"`
	SellerID       *uuid.UUID      `json:"seller_id,omitempty"`
	LotNumber      string          `json:"lot_number,omitempty"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	AuctionFees    decimal.Decimal `json:"auction_fees"`
	OtherFees      decimal.Decimal `json:"other_fees"`
	RepairEstimate decimal.Decimal `json:"repair_estimate"`

	// Commercial
	BuyerID           *uuid.UUID      `json:"buyer_id,omitempty"`
	ExpectedSalePrice decimal.Decimal `json:"expected_sale_price"`
	SalePrice         decimal.Decimal `json:"sale_price"`
	CurrencyCode      string          `json:"currency_code"`

	// Decode results (replaced wholesale on each successful decode)
	Manufacturer         string     `json:"manufacturer,omitempty"`
	PlantCountry         string     `json:"plant_country,omitempty"`
	EngineCylinders      string     `json:"engine_cylinders,omitempty"`
	Displacement         string     `json:"displacement,omitempty"`
	FuelTypePrimary      string     `json:"fuel_type,omitempty"`
	FuelTypeSecondary    string     `json:"fuel_type_secondary,omitempty"`
	ElectrificationLevel string     `json:"electrification_level,omitempty"`
	DecodedAt            *time.Time `json:"vin_decoded_at,omitempty"`
	DecodeRaw            []byte     `json:"-"`
	IsDangerousGoods     bool       `json:"is_dangerous_goods"`

	Status string `json:"status"`

	// Accounting links, each created at most once.
	VendorBillID      *uuid.UUID `json:"vendor_bill_id,omitempty"`
	CustomerInvoiceID *uuid.UUID `json:"customer_invoice_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
