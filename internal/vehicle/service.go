package vehicle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/entity"
	"github.com/joseph-ayodele/vintrade/internal/ledger"
	"github.com/joseph-ayodele/vintrade/internal/repository"
	"github.com/joseph-ayodele/vintrade/internal/vin"
)

// Service sequences vehicle operations as explicit steps: validate, then
// persist, then optionally decode, then optionally create downstream
// documents. Decode and vendor-bill failures are contained to their step
// and recorded on the vehicle instead of aborting the save.
type Service struct {
	vehicles   repository.VehicleRepository
	partners   repository.PartnerRepository
	wallets    repository.WalletRepository
	invoices   repository.InvoiceRepository
	decoder    decode.Decoder
	autoDecode bool
	logger     *slog.Logger
}

func NewService(
	vehicles repository.VehicleRepository,
	partners repository.PartnerRepository,
	wallets repository.WalletRepository,
	invoices repository.InvoiceRepository,
	decoder decode.Decoder,
	autoDecode bool,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		vehicles:   vehicles,
		partners:   partners,
		wallets:    wallets,
		invoices:   invoices,
		decoder:    decoder,
		autoDecode: autoDecode,
		logger:     logger,
	}
}

// RegisterInput carries the fields accepted when registering a vehicle.
type RegisterInput struct {
	CompanyID     uuid.UUID
	Reference     string
	VIN           string
	Year          string
	Make          string
	Model         string
	Trim          string
	BodyType      string
	ExteriorColor string
	Distance      float64
	DistanceUnit  string
	Notes         string

	PurchaseDate   *time.Time
	SellerID       *uuid.UUID
	LotNumber      string
	PurchasePrice  decimal.Decimal
	AuctionFees    decimal.Decimal
	OtherFees      decimal.Decimal
	RepairEstimate decimal.Decimal

	BuyerID           *uuid.UUID
	ExpectedSalePrice decimal.Decimal
	SalePrice         decimal.Decimal
	CurrencyCode      string

	CreateVendorBill bool
}

// Register validates and persists a new vehicle, then runs the contained
// follow-up steps (vendor bill, auto-decode).
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.Vehicle, error) {
	normalized, err := vin.Validate(in.VIN)
	if err != nil {
		return nil, err
	}
	if err := ValidateYear(in.Year); err != nil {
		return nil, err
	}

	unit := in.DistanceUnit
	if unit == "" {
		unit = "km"
	}
	currency := in.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	reference := in.Reference
	if reference == "" {
		reference = newReference()
	}

	v := &entity.Vehicle{
		ID:                uuid.New(),
		CompanyID:         in.CompanyID,
		Reference:         reference,
		VIN:               normalized.Value,
		VINCheckOK:        normalized.CheckOK,
		Year:              in.Year,
		Make:              in.Make,
		Model:             in.Model,
		Trim:              in.Trim,
		BodyType:          in.BodyType,
		ExteriorColor:     in.ExteriorColor,
		Distance:          in.Distance,
		DistanceUnit:      unit,
		Notes:             in.Notes,
		PurchaseDate:      in.PurchaseDate,
		SellerID:          in.SellerID,
		LotNumber:         in.LotNumber,
		PurchasePrice:     in.PurchasePrice,
		AuctionFees:       in.AuctionFees,
		OtherFees:         in.OtherFees,
		RepairEstimate:    in.RepairEstimate,
		BuyerID:           in.BuyerID,
		ExpectedSalePrice: in.ExpectedSalePrice,
		SalePrice:         in.SalePrice,
		CurrencyCode:      currency,
		Status:            string(StatusDraft),
	}

	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("vehicle.registered", "id", v.ID, "vin", v.VIN, "reference", v.Reference)

	if in.CreateVendorBill {
		if _, err := s.CreateVendorBill(ctx, v.ID); err != nil {
			s.logger.Warn("vehicle.vendor_bill.failed", "id", v.ID, "error", err)
			s.note(ctx, v.ID, fmt.Sprintf("Vendor bill could not be created automatically: %v", err))
		}
	}

	if s.autoDecode {
		s.decodeAndStore(ctx, v.ID, normalized)
	}

	return s.vehicles.GetByID(ctx, v.ID)
}

// UpdateInput carries the mutable fields of a vehicle. Nil pointers leave
// the stored value untouched; VIN corrections re-trigger decoding.
type UpdateInput struct {
	VIN           *string
	Year          *string
	Make          *string
	Model         *string
	Trim          *string
	BodyType      *string
	ExteriorColor *string
	Distance      *float64
	DistanceUnit  *string
	Notes         *string

	PurchaseDate   *time.Time
	SellerID       *uuid.UUID
	LotNumber      *string
	PurchasePrice  *decimal.Decimal
	AuctionFees    *decimal.Decimal
	OtherFees      *decimal.Decimal
	RepairEstimate *decimal.Decimal

	BuyerID           *uuid.UUID
	ExpectedSalePrice *decimal.Decimal
	SalePrice         *decimal.Decimal
}

// Update applies a partial edit. A changed VIN must itself validate; when
// it does, a fresh decode runs as a contained step.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*entity.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vinChanged := false
	var normalized vin.VIN
	if in.VIN != nil {
		normalized, err = vin.Validate(*in.VIN)
		if err != nil {
			return nil, err
		}
		if normalized.Value != v.VIN {
			vinChanged = true
			v.VIN = normalized.Value
			v.VINCheckOK = normalized.CheckOK
		}
	}
	if in.Year != nil {
		if err := ValidateYear(*in.Year); err != nil {
			return nil, err
		}
		v.Year = *in.Year
	}
	if in.Make != nil {
		v.Make = *in.Make
	}
	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.Trim != nil {
		v.Trim = *in.Trim
	}
	if in.BodyType != nil {
		v.BodyType = *in.BodyType
	}
	if in.ExteriorColor != nil {
		v.ExteriorColor = *in.ExteriorColor
	}
	if in.Distance != nil {
		v.Distance = *in.Distance
	}
	if in.DistanceUnit != nil {
		v.DistanceUnit = *in.DistanceUnit
	}
	if in.Notes != nil {
		v.Notes = *in.Notes
	}
	if in.PurchaseDate != nil {
		v.PurchaseDate = in.PurchaseDate
	}
	if in.SellerID != nil {
		v.SellerID = in.SellerID
	}
	if in.LotNumber != nil {
		v.LotNumber = *in.LotNumber
	}
	if in.PurchasePrice != nil {
		v.PurchasePrice = *in.PurchasePrice
	}
	if in.AuctionFees != nil {
		v.AuctionFees = *in.AuctionFees
	}
	if in.OtherFees != nil {
		v.OtherFees = *in.OtherFees
	}
	if in.RepairEstimate != nil {
		v.RepairEstimate = *in.RepairEstimate
	}
	if in.BuyerID != nil {
		v.BuyerID = in.BuyerID
	}
	if in.ExpectedSalePrice != nil {
		v.ExpectedSalePrice = *in.ExpectedSalePrice
	}
	if in.SalePrice != nil {
		v.SalePrice = *in.SalePrice
	}

	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}

	if vinChanged && s.autoDecode {
		s.decodeAndStore(ctx, v.ID, normalized)
	}

	return s.vehicles.GetByID(ctx, v.ID)
}

// SetStatus moves the vehicle through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, target string) (*entity.Vehicle, error) {
	targetStatus, err := ParseStatus(target)
	if err != nil {
		return nil, err
	}
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	current, err := ParseStatus(v.Status)
	if err != nil {
		return nil, err
	}
	next, err := Transition(current, targetStatus)
	if err != nil {
		return nil, err
	}
	if err := s.vehicles.SetStatus(ctx, id, string(next)); err != nil {
		return nil, err
	}
	s.logger.Info("vehicle.status.changed", "id", id, "from", current, "to", next)
	v.Status = string(next)
	return v, nil
}

// RefreshDecode re-runs the decode on demand. Unlike the automatic decode
// on save, an explicit refresh surfaces the failure to the caller.
func (s *Service) RefreshDecode(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	normalized, err := vin.Validate(v.VIN)
	if err != nil {
		return nil, err
	}
	res, err := s.decoder.Decode(ctx, normalized)
	if err != nil {
		return nil, err
	}
	ApplyDecode(v, res)
	if err := s.vehicles.Update(ctx, v); err != nil {
		return nil, err
	}
	s.logger.Info("vehicle.decode.refreshed", "id", id, "vin", v.VIN)
	return v, nil
}

// CreateVendorBill creates the draft bill for the purchase side, at most
// once per vehicle. Repeat calls return the existing bill.
func (s *Service) CreateVendorBill(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.VendorBillID != nil {
		return s.invoices.GetByID(ctx, *v.VendorBillID)
	}
	if v.SellerID == nil {
		return nil, common.NewAppError("NO_SELLER", "select a seller/counterparty to create a vendor bill", common.ErrInvalidInput)
	}
	amount := TotalCost(v.PurchasePrice, v.AuctionFees, v.OtherFees)
	if amount.IsZero() {
		return nil, common.NewAppError("NO_AMOUNT", "no purchase amounts present (price/fees)", common.ErrInvalidInput)
	}

	invoiceDate := time.Now().UTC()
	if v.PurchaseDate != nil {
		invoiceDate = *v.PurchaseDate
	}
	inv := &entity.Invoice{
		Kind:        entity.InvoiceKindVendorBill,
		State:       entity.InvoiceStateDraft,
		PartnerID:   *v.SellerID,
		CompanyID:   v.CompanyID,
		VehicleID:   &v.ID,
		InvoiceDate: invoiceDate,
		Amount:      amount,
		Currency:    v.CurrencyCode,
		Description: fmt.Sprintf("Vehicle %s purchase & fees", v.VIN),
		Origin:      v.Reference,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.vehicles.LinkVendorBill(ctx, v.ID, inv.ID); err != nil {
		return nil, err
	}
	s.logger.Info("vehicle.vendor_bill.created", "id", v.ID, "invoice_id", inv.ID, "amount", amount)
	s.note(ctx, v.ID, fmt.Sprintf("Vendor bill created: %s", inv.ID))
	return inv, nil
}

// CreateCustomerInvoice creates the sale-side invoice, at most once per
// vehicle, gated by the credit guard. A guard rejection aborts the request
// and surfaces the projected figures.
func (s *Service) CreateCustomerInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.CustomerInvoiceID != nil {
		return s.invoices.GetByID(ctx, *v.CustomerInvoiceID)
	}
	if v.BuyerID == nil {
		return nil, common.NewAppError("NO_BUYER", "select a customer (buyer) before creating an invoice", common.ErrInvalidInput)
	}

	amount := v.SalePrice
	if amount.IsZero() {
		amount = v.ExpectedSalePrice
	}
	if amount.IsZero() {
		return nil, common.NewAppError("NO_AMOUNT", "set a sale price or expected sale price", common.ErrInvalidInput)
	}

	partner, err := s.partners.GetByID(ctx, *v.BuyerID)
	if err != nil {
		return nil, err
	}
	moves, err := s.wallets.ListByPartner(ctx, partner.ID, v.CompanyID)
	if err != nil {
		return nil, err
	}
	receivable, err := s.invoices.ReceivableBalance(ctx, partner.ID, v.CompanyID)
	if err != nil {
		return nil, err
	}

	approval, err := ledger.Authorize(ledger.GuardRequest{
		PartnerID:         partner.ID,
		PartnerName:       partner.Name,
		CompanyID:         v.CompanyID,
		ReceivableBalance: receivable,
		WalletBalance:     ledger.WalletBalance(moves),
		CreditLimit:       partner.CreditLimit,
		OnHold:            partner.OnHold,
		Amount:            amount,
	})
	if err != nil {
		s.logger.Warn("vehicle.customer_invoice.rejected", "id", v.ID, "partner_id", partner.ID, "error", err)
		return nil, err
	}
	s.logger.Info("vehicle.customer_invoice.authorized",
		"id", v.ID, "partner_id", partner.ID,
		"receivable", approval.ReceivableBalance, "wallet", approval.WalletBalance,
		"projected", approval.Projected)

	inv := &entity.Invoice{
		Kind:        entity.InvoiceKindCustomerInvoice,
		State:       entity.InvoiceStateDraft,
		PartnerID:   partner.ID,
		CompanyID:   v.CompanyID,
		VehicleID:   &v.ID,
		InvoiceDate: time.Now().UTC(),
		Amount:      amount,
		Currency:    v.CurrencyCode,
		Description: invoiceDescription(v),
		Origin:      v.Reference,
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.vehicles.LinkCustomerInvoice(ctx, v.ID, inv.ID); err != nil {
		return nil, err
	}

	// Keep the stored sale price in step with the invoiced amount so the
	// profit figure stays consistent.
	if !v.SalePrice.Equal(amount) {
		v.SalePrice = amount
		if err := s.vehicles.Update(ctx, v); err != nil {
			s.logger.Warn("vehicle.sale_price.sync_failed", "id", v.ID, "error", err)
		}
	}

	s.note(ctx, v.ID, fmt.Sprintf("Customer invoice created: %s", inv.ID))
	return inv, nil
}

// Get loads one vehicle.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	return s.vehicles.GetByID(ctx, id)
}

// GetByVIN looks a vehicle up by its normalized VIN.
func (s *Service) GetByVIN(ctx context.Context, raw string) (*entity.Vehicle, error) {
	return s.vehicles.GetByVIN(ctx, vin.Normalize(raw))
}

// List loads vehicles for a company, optionally filtered by status.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, status string) ([]*entity.Vehicle, error) {
	if status != "" {
		if _, err := ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.vehicles.List(ctx, companyID, status)
}

// decodeAndStore is the contained auto-decode step: any failure is logged
// and recorded as a note, never propagated.
func (s *Service) decodeAndStore(ctx context.Context, id uuid.UUID, normalized vin.VIN) {
	res, err := s.decoder.Decode(ctx, normalized)
	if err != nil {
		s.logger.Warn("vehicle.decode.failed", "id", id, "vin", normalized.Value, "error", err)
		s.note(ctx, id, fmt.Sprintf("VIN decode failed: %v", err))
		return
	}
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("vehicle.decode.reload_failed", "id", id, "error", err)
		return
	}
	ApplyDecode(v, res)
	if err := s.vehicles.Update(ctx, v); err != nil {
		s.logger.Warn("vehicle.decode.store_failed", "id", id, "error", err)
		return
	}
	s.logger.Info("vehicle.decode.ok", "id", id, "vin", normalized.Value, "make", v.Make, "model", v.Model)
}

func (s *Service) note(ctx context.Context, id uuid.UUID, text string) {
	if err := s.vehicles.AppendNote(ctx, id, text); err != nil {
		s.logger.Warn("vehicle.note.failed", "id", id, "error", err)
	}
}

func invoiceDescription(v *entity.Vehicle) string {
	parts := make([]string, 0, 4)
	if v.Make != "" {
		parts = append(parts, strings.ToUpper(v.Make))
	}
	if v.Model != "" {
		parts = append(parts, v.Model)
	}
	if v.Year != "" {
		parts = append(parts, v.Year)
	}
	head := strings.Join(parts, " ")
	if head == "" {
		return fmt.Sprintf("Vehicle VIN %s", v.VIN)
	}
	return fmt.Sprintf("%s - VIN %s", head, v.VIN)
}

func newReference() string {
	return "VEH/" + strings.ToUpper(uuid.New().String()[:8])
}
