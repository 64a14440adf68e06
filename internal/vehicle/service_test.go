package vehicle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/entity"
	"github.com/joseph-ayodele/vintrade/internal/ledger"
	"github.com/joseph-ayodele/vintrade/internal/vin"
)

const goodVIN = "1HGCM82633A004352"

// In-memory fakes standing in for the storage collaborator.

type fakeVehicles struct {
	byID map[uuid.UUID]*entity.Vehicle
}

func newFakeVehicles() *fakeVehicles {
	return &fakeVehicles{byID: map[uuid.UUID]*entity.Vehicle{}}
}

func (f *fakeVehicles) Create(_ context.Context, v *entity.Vehicle) error {
	for _, existing := range f.byID {
		if existing.VIN == v.VIN {
			return common.NewAppError("VIN_EXISTS", "this VIN already exists", common.ErrConflict)
		}
	}
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVehicles) GetByID(_ context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVehicles) GetByVIN(_ context.Context, vinStr string) (*entity.Vehicle, error) {
	for _, v := range f.byID {
		if v.VIN == vinStr {
			cp := *v
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeVehicles) List(_ context.Context, companyID uuid.UUID, status string) ([]*entity.Vehicle, error) {
	var out []*entity.Vehicle
	for _, v := range f.byID {
		if v.CompanyID == companyID && (status == "" || v.Status == status) {
			cp := *v
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeVehicles) Update(_ context.Context, v *entity.Vehicle) error {
	stored, ok := f.byID[v.ID]
	if !ok {
		return common.ErrNotFound
	}
	links := struct {
		bill, inv *uuid.UUID
	}{stored.VendorBillID, stored.CustomerInvoiceID}
	cp := *v
	cp.VendorBillID = links.bill
	cp.CustomerInvoiceID = links.inv
	f.byID[v.ID] = &cp
	return nil
}

func (f *fakeVehicles) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	v, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	v.Status = status
	return nil
}

func (f *fakeVehicles) LinkVendorBill(_ context.Context, id, invoiceID uuid.UUID) error {
	v, ok := f.byID[id]
	if !ok || v.VendorBillID != nil {
		return common.ErrNotFound
	}
	v.VendorBillID = &invoiceID
	return nil
}

func (f *fakeVehicles) LinkCustomerInvoice(_ context.Context, id, invoiceID uuid.UUID) error {
	v, ok := f.byID[id]
	if !ok || v.CustomerInvoiceID != nil {
		return common.ErrNotFound
	}
	v.CustomerInvoiceID = &invoiceID
	return nil
}

func (f *fakeVehicles) AppendNote(_ context.Context, id uuid.UUID, note string) error {
	v, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	if v.Notes == "" {
		v.Notes = note
	} else {
		v.Notes += "\n" + note
	}
	return nil
}

type fakePartners struct {
	byID map[uuid.UUID]*entity.Partner
}

func (f *fakePartners) Create(_ context.Context, p *entity.Partner) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakePartners) GetByID(_ context.Context, id uuid.UUID) (*entity.Partner, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return p, nil
}

func (f *fakePartners) List(_ context.Context, _ uuid.UUID) ([]*entity.Partner, error) {
	return nil, nil
}

func (f *fakePartners) SetCreditProfile(_ context.Context, id uuid.UUID, limit decimal.Decimal, onHold bool) error {
	p, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	p.CreditLimit = limit
	p.OnHold = onHold
	return nil
}

type fakeWallets struct {
	moves []entity.WalletMove
}

func (f *fakeWallets) Insert(_ context.Context, m *entity.WalletMove) error {
	f.moves = append(f.moves, *m)
	return nil
}

func (f *fakeWallets) ListByPartner(_ context.Context, partnerID, companyID uuid.UUID) ([]entity.WalletMove, error) {
	var out []entity.WalletMove
	for _, m := range f.moves {
		if m.PartnerID == partnerID && m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeWallets) ListUntil(ctx context.Context, partnerID, companyID uuid.UUID, _ time.Time) ([]entity.WalletMove, error) {
	return f.ListByPartner(ctx, partnerID, companyID)
}

type fakeInvoices struct {
	byID       map[uuid.UUID]*entity.Invoice
	receivable decimal.Decimal
}

func newFakeInvoices() *fakeInvoices {
	return &fakeInvoices{byID: map[uuid.UUID]*entity.Invoice{}}
}

func (f *fakeInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	f.byID[inv.ID] = inv
	return nil
}

func (f *fakeInvoices) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvoices) ListByPartnerUntil(_ context.Context, _, _ uuid.UUID, _ time.Time) ([]*entity.Invoice, error) {
	return nil, nil
}

func (f *fakeInvoices) Cancel(_ context.Context, id uuid.UUID) error {
	inv, ok := f.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	inv.State = entity.InvoiceStateCancelled
	return nil
}

func (f *fakeInvoices) ReceivableBalance(_ context.Context, _, _ uuid.UUID) (decimal.Decimal, error) {
	return f.receivable, nil
}

type fakeDecoder struct {
	result *decode.Result
	err    error
	calls  int
}

func (f *fakeDecoder) Decode(_ context.Context, _ vin.VIN) (*decode.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fixture struct {
	svc      *Service
	vehicles *fakeVehicles
	partners *fakePartners
	wallets  *fakeWallets
	invoices *fakeInvoices
	decoder  *fakeDecoder
}

func newFixture(autoDecode bool) *fixture {
	f := &fixture{
		vehicles: newFakeVehicles(),
		partners: &fakePartners{byID: map[uuid.UUID]*entity.Partner{}},
		wallets:  &fakeWallets{},
		invoices: newFakeInvoices(),
		decoder: &fakeDecoder{result: &decode.Result{
			Make:            "HONDA",
			Model:           "Accord",
			ModelYear:       "2003",
			FuelTypePrimary: "Gasoline",
			DecodedAt:       time.Now().UTC(),
		}},
	}
	f.svc = NewService(f.vehicles, f.partners, f.wallets, f.invoices, f.decoder, autoDecode, nil)
	return f
}

func (f *fixture) addPartner(limit string, onHold bool) *entity.Partner {
	p := &entity.Partner{
		ID:          uuid.New(),
		CompanyID:   uuid.New(),
		Name:        "Acme Motors",
		CreditLimit: decimal.RequireFromString(limit),
		OnHold:      onHold,
	}
	f.partners.byID[p.ID] = p
	return p
}

func TestRegister_ValidatesVIN(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Register(context.Background(), RegisterInput{VIN: "nope"})
	var lengthErr *vin.LengthError
	require.ErrorAs(t, err, &lengthErr)
}

func TestRegister_AutoDecodeMergesAttributes(t *testing.T) {
	f := newFixture(true)
	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID: uuid.New(),
		VIN:       goodVIN,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.decoder.calls)
	assert.Equal(t, "HONDA", v.Make)
	assert.Equal(t, "Accord", v.Model)
	assert.Equal(t, "2003", v.Year)
	assert.True(t, v.VINCheckOK)
	assert.Equal(t, string(StatusDraft), v.Status)
	assert.NotEmpty(t, v.Reference)
}

func TestRegister_DecodeFailureDoesNotAbortSave(t *testing.T) {
	f := newFixture(true)
	f.decoder.err = &decode.TransportError{VIN: goodVIN, Cause: errors.New("connection refused")}

	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID: uuid.New(),
		VIN:       goodVIN,
	})
	require.NoError(t, err, "decode failure must not abort the save")
	assert.Contains(t, v.Notes, "VIN decode failed")
	assert.Empty(t, v.Make)
}

func TestRegister_DuplicateVIN(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Register(context.Background(), RegisterInput{CompanyID: uuid.New(), VIN: goodVIN})
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), RegisterInput{CompanyID: uuid.New(), VIN: goodVIN})
	require.ErrorIs(t, err, common.ErrConflict)
}

func TestRegister_VendorBillFailureRecordedAsNote(t *testing.T) {
	f := newFixture(false)
	// No seller set, so the vendor bill step fails, contained.
	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:        uuid.New(),
		VIN:              goodVIN,
		CreateVendorBill: true,
	})
	require.NoError(t, err)
	assert.Contains(t, v.Notes, "Vendor bill could not be created automatically")
	assert.Nil(t, v.VendorBillID)
}

func TestUpdate_VINChangeTriggersRedecode(t *testing.T) {
	f := newFixture(true)
	v, err := f.svc.Register(context.Background(), RegisterInput{CompanyID: uuid.New(), VIN: goodVIN})
	require.NoError(t, err)
	require.Equal(t, 1, f.decoder.calls)

	other := "1M8GDM9AXKP042788"
	updated, err := f.svc.Update(context.Background(), v.ID, UpdateInput{VIN: &other})
	require.NoError(t, err)
	assert.Equal(t, other, updated.VIN)
	assert.Equal(t, 2, f.decoder.calls)

	// Re-submitting the same VIN is not a change and does not re-decode.
	_, err = f.svc.Update(context.Background(), v.ID, UpdateInput{VIN: &other})
	require.NoError(t, err)
	assert.Equal(t, 2, f.decoder.calls)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(false)
	v, err := f.svc.Register(context.Background(), RegisterInput{CompanyID: uuid.New(), VIN: goodVIN})
	require.NoError(t, err)

	updated, err := f.svc.SetStatus(context.Background(), v.ID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, "delivered", updated.Status)

	// Permissive workflow: back to draft is allowed.
	updated, err = f.svc.SetStatus(context.Background(), v.ID, "draft")
	require.NoError(t, err)
	assert.Equal(t, "draft", updated.Status)

	_, err = f.svc.SetStatus(context.Background(), v.ID, "scrapped")
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestCreateCustomerInvoice_OnHold(t *testing.T) {
	f := newFixture(false)
	p := f.addPartner("100000", true)
	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:         p.CompanyID,
		VIN:               goodVIN,
		BuyerID:           &p.ID,
		ExpectedSalePrice: decimal.RequireFromString("1500"),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	var onHold *ledger.OnHoldError
	require.ErrorAs(t, err, &onHold)
	assert.Empty(t, f.invoices.byID)
}

func TestCreateCustomerInvoice_CreditLimit(t *testing.T) {
	f := newFixture(false)
	p := f.addPartner("5000", false)
	f.invoices.receivable = decimal.RequireFromString("4000")

	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:         p.CompanyID,
		VIN:               goodVIN,
		BuyerID:           &p.ID,
		ExpectedSalePrice: decimal.RequireFromString("1500"),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	var exceeded *ledger.CreditLimitExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.True(t, exceeded.Projected.Equal(decimal.RequireFromString("5500")))

	// A wallet credit offsets the projected balance and lets it through.
	f.wallets.moves = append(f.wallets.moves, entity.WalletMove{
		PartnerID: p.ID,
		CompanyID: p.CompanyID,
		Amount:    decimal.RequireFromString("600"),
	})
	inv, err := f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	require.NoError(t, err)
	assert.True(t, inv.Amount.Equal(decimal.RequireFromString("1500")))
	assert.Equal(t, entity.InvoiceKindCustomerInvoice, inv.Kind)
}

func TestCreateCustomerInvoice_AtMostOnce(t *testing.T) {
	f := newFixture(false)
	p := f.addPartner("0", false)
	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:         p.CompanyID,
		VIN:               goodVIN,
		BuyerID:           &p.ID,
		ExpectedSalePrice: decimal.RequireFromString("1500"),
	})
	require.NoError(t, err)

	first, err := f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	require.NoError(t, err)

	second, err := f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeat call returns the existing invoice")
	assert.Len(t, f.invoices.byID, 1)
}

func TestCreateCustomerInvoice_SyncsSalePrice(t *testing.T) {
	f := newFixture(false)
	p := f.addPartner("0", false)
	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:         p.CompanyID,
		VIN:               goodVIN,
		BuyerID:           &p.ID,
		ExpectedSalePrice: decimal.RequireFromString("1500"),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateCustomerInvoice(context.Background(), v.ID)
	require.NoError(t, err)

	reloaded, err := f.svc.Get(context.Background(), v.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.SalePrice.Equal(decimal.RequireFromString("1500")))
}

func TestCreateVendorBill(t *testing.T) {
	f := newFixture(false)
	seller := f.addPartner("0", false)

	v, err := f.svc.Register(context.Background(), RegisterInput{
		CompanyID:     seller.CompanyID,
		VIN:           goodVIN,
		SellerID:      &seller.ID,
		PurchasePrice: decimal.RequireFromString("1000"),
		AuctionFees:   decimal.RequireFromString("50"),
		OtherFees:     decimal.RequireFromString("25"),
	})
	require.NoError(t, err)

	bill, err := f.svc.CreateVendorBill(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceKindVendorBill, bill.Kind)
	assert.True(t, bill.Amount.Equal(decimal.RequireFromString("1075")))

	again, err := f.svc.CreateVendorBill(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.ID, again.ID)
}

func TestRefreshDecode_SurfacesFailure(t *testing.T) {
	f := newFixture(false)
	v, err := f.svc.Register(context.Background(), RegisterInput{CompanyID: uuid.New(), VIN: goodVIN})
	require.NoError(t, err)

	f.decoder.err = &decode.NoResultsError{VIN: goodVIN}
	_, err = f.svc.RefreshDecode(context.Background(), v.ID)
	var noResults *decode.NoResultsError
	require.ErrorAs(t, err, &noResults)
}
