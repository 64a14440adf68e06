package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/vehicle"
)

type registerVehicleRequest struct {
	CompanyID     string  `json:"company_id"`
	Reference     string  `json:"reference,omitempty"`
	VIN           string  `json:"vin"`
	Year          string  `json:"year,omitempty"`
	Make          string  `json:"make,omitempty"`
	Model         string  `json:"model,omitempty"`
	Trim          string  `json:"trim,omitempty"`
	BodyType      string  `json:"body_type,omitempty"`
	ExteriorColor string  `json:"exterior_color,omitempty"`
	Distance      float64 `json:"distance_travelled,omitempty"`
	DistanceUnit  string  `json:"distance_uom,omitempty"`
	Notes         string  `json:"notes,omitempty"`

	PurchaseDate   string           `json:"purchase_date,omitempty"`
	SellerID       string           `json:"seller_id,omitempty"`
	LotNumber      string           `json:"lot_number,omitempty"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price,omitempty"`
	AuctionFees    *decimal.Decimal `json:"auction_fees,omitempty"`
	OtherFees      *decimal.Decimal `json:"other_fees,omitempty"`
	RepairEstimate *decimal.Decimal `json:"repair_estimate,omitempty"`

	BuyerID           string           `json:"buyer_id,omitempty"`
	ExpectedSalePrice *decimal.Decimal `json:"expected_sale_price,omitempty"`
	SalePrice         *decimal.Decimal `json:"sale_price,omitempty"`
	CurrencyCode      string           `json:"currency_code,omitempty"`

	CreateVendorBill bool `json:"create_vendor_bill,omitempty"`
}

func (s *Server) handleRegisterVehicle(w http.ResponseWriter, r *http.Request) {
	var req registerVehicleRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	val := common.NewValidator()
	val.Field("company_id", req.CompanyID, common.Required, common.UUID)
	val.Field("vin", req.VIN, common.Required)
	if req.CurrencyCode != "" {
		val.Field("currency_code", req.CurrencyCode, common.CurrencyCode)
	}
	if err := val.Error(); err != nil {
		s.respondError(w, err)
		return
	}
	companyID, _ := uuid.Parse(req.CompanyID)
	sellerID, err := parseOptionalUUID(req.SellerID, "seller_id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	buyerID, err := parseOptionalUUID(req.BuyerID, "buyer_id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	purchaseDate, err := parseOptionalDate(req.PurchaseDate, "purchase_date")
	if err != nil {
		s.respondError(w, err)
		return
	}

	in := vehicle.RegisterInput{
		CompanyID:         companyID,
		Reference:         req.Reference,
		VIN:               req.VIN,
		Year:              req.Year,
		Make:              req.Make,
		Model:             req.Model,
		Trim:              req.Trim,
		BodyType:          req.BodyType,
		ExteriorColor:     req.ExteriorColor,
		Distance:          req.Distance,
		DistanceUnit:      req.DistanceUnit,
		Notes:             req.Notes,
		PurchaseDate:      purchaseDate,
		SellerID:          sellerID,
		LotNumber:         req.LotNumber,
		PurchasePrice:     decimalOrZero(req.PurchasePrice),
		AuctionFees:       decimalOrZero(req.AuctionFees),
		OtherFees:         decimalOrZero(req.OtherFees),
		RepairEstimate:    decimalOrZero(req.RepairEstimate),
		BuyerID:           buyerID,
		ExpectedSalePrice: decimalOrZero(req.ExpectedSalePrice),
		SalePrice:         decimalOrZero(req.SalePrice),
		CurrencyCode:      req.CurrencyCode,
		CreateVendorBill:  req.CreateVendorBill,
	}

	v, err := s.vehicles.Register(r.Context(), in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	v, err := s.vehicles.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGetVehicleByVIN(w http.ResponseWriter, r *http.Request) {
	v, err := s.vehicles.GetByVIN(r.Context(), chi.URLParam(r, "vin"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_COMPANY_ID", "company_id query parameter must be a UUID", common.ErrInvalidInput))
		return
	}
	vehicles, err := s.vehicles.List(r.Context(), companyID, r.URL.Query().Get("status"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vehicles": vehicles, "count": len(vehicles)})
}

type updateVehicleRequest struct {
	VIN           *string  `json:"vin,omitempty"`
	Year          *string  `json:"year,omitempty"`
	Make          *string  `json:"make,omitempty"`
	Model         *string  `json:"model,omitempty"`
	Trim          *string  `json:"trim,omitempty"`
	BodyType      *string  `json:"body_type,omitempty"`
	ExteriorColor *string  `json:"exterior_color,omitempty"`
	Distance      *float64 `json:"distance_travelled,omitempty"`
	DistanceUnit  *string  `json:"distance_uom,omitempty"`
	Notes         *string  `json:"notes,omitempty"`

	PurchaseDate   *string          `json:"purchase_date,omitempty"`
	SellerID       *string          `json:"seller_id,omitempty"`
	LotNumber      *string          `json:"lot_number,omitempty"`
	PurchasePrice  *decimal.Decimal `json:"purchase_price,omitempty"`
	AuctionFees    *decimal.Decimal `json:"auction_fees,omitempty"`
	OtherFees      *decimal.Decimal `json:"other_fees,omitempty"`
	RepairEstimate *decimal.Decimal `json:"repair_estimate,omitempty"`

	BuyerID           *string          `json:"buyer_id,omitempty"`
	ExpectedSalePrice *decimal.Decimal `json:"expected_sale_price,omitempty"`
	SalePrice         *decimal.Decimal `json:"sale_price,omitempty"`
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req updateVehicleRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	in := vehicle.UpdateInput{
		VIN:               req.VIN,
		Year:              req.Year,
		Make:              req.Make,
		Model:             req.Model,
		Trim:              req.Trim,
		BodyType:          req.BodyType,
		ExteriorColor:     req.ExteriorColor,
		Distance:          req.Distance,
		DistanceUnit:      req.DistanceUnit,
		Notes:             req.Notes,
		LotNumber:         req.LotNumber,
		PurchasePrice:     req.PurchasePrice,
		AuctionFees:       req.AuctionFees,
		OtherFees:         req.OtherFees,
		RepairEstimate:    req.RepairEstimate,
		ExpectedSalePrice: req.ExpectedSalePrice,
		SalePrice:         req.SalePrice,
	}
	if req.PurchaseDate != nil {
		d, err := parseOptionalDate(*req.PurchaseDate, "purchase_date")
		if err != nil {
			s.respondError(w, err)
			return
		}
		in.PurchaseDate = d
	}
	if req.SellerID != nil {
		sellerID, err := parseOptionalUUID(*req.SellerID, "seller_id")
		if err != nil {
			s.respondError(w, err)
			return
		}
		in.SellerID = sellerID
	}
	if req.BuyerID != nil {
		buyerID, err := parseOptionalUUID(*req.BuyerID, "buyer_id")
		if err != nil {
			s.respondError(w, err)
			return
		}
		in.BuyerID = buyerID
	}

	v, err := s.vehicles.Update(r.Context(), id, in)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	v, err := s.vehicles.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRefreshDecode(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	v, err := s.vehicles.RefreshDecode(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCreateVendorBill(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	inv, err := s.vehicles.CreateVendorBill(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleCreateCustomerInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	inv, err := s.vehicles.CreateCustomerInvoice(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, common.NewAppError("BAD_ID", name+" must be a UUID", common.ErrInvalidInput)
	}
	return id, nil
}

func parseOptionalUUID(raw, name string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.NewAppError("BAD_ID", name+" must be a UUID", common.ErrInvalidInput)
	}
	return &id, nil
}

func parseOptionalDate(raw, name string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, common.NewAppError("BAD_DATE", name+" must be YYYY-MM-DD", common.ErrInvalidInput)
	}
	return &t, nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
