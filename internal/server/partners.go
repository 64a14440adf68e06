package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/entity"
	"github.com/joseph-ayodele/vintrade/internal/ledger"
)

type createPartnerRequest struct {
	CompanyID   string           `json:"company_id"`
	Name        string           `json:"name"`
	Email       string           `json:"email,omitempty"`
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
}

func (s *Server) handleCreatePartner(w http.ResponseWriter, r *http.Request) {
	var req createPartnerRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	v := common.NewValidator()
	v.Field("company_id", req.CompanyID, common.Required, common.UUID)
	v.Field("name", req.Name, common.Required, common.MaxLength(120))
	if err := v.Error(); err != nil {
		s.respondError(w, err)
		return
	}
	companyID, _ := uuid.Parse(req.CompanyID)

	p := &entity.Partner{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Name:        req.Name,
		Email:       req.Email,
		CreditLimit: decimalOrZero(req.CreditLimit),
	}
	if err := s.partners.Create(r.Context(), p); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetPartner(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	p, err := s.partners.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListPartners(w http.ResponseWriter, r *http.Request) {
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_COMPANY_ID", "company_id query parameter must be a UUID", common.ErrInvalidInput))
		return
	}
	partners, err := s.partners.List(r.Context(), companyID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"partners": partners, "count": len(partners)})
}

type creditProfileRequest struct {
	CreditLimit *decimal.Decimal `json:"credit_limit,omitempty"`
	OnHold      *bool            `json:"on_hold,omitempty"`
}

func (s *Server) handleSetCreditProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req creditProfileRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	p, err := s.partners.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	limit := p.CreditLimit
	if req.CreditLimit != nil {
		limit = *req.CreditLimit
	}
	onHold := p.OnHold
	if req.OnHold != nil {
		onHold = *req.OnHold
	}
	if err := s.partners.SetCreditProfile(r.Context(), id, limit, onHold); err != nil {
		s.respondError(w, err)
		return
	}
	p.CreditLimit = limit
	p.OnHold = onHold
	writeJSON(w, http.StatusOK, p)
}

type walletMoveRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date,omitempty"`
	Note      string          `json:"note,omitempty"`
	InvoiceID string          `json:"invoice_id,omitempty"`
	CompanyID string          `json:"company_id"`
}

func (s *Server) handleAddWalletMove(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	var req walletMoveRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_COMPANY_ID", "company_id must be a UUID", common.ErrInvalidInput))
		return
	}
	if req.Amount.IsZero() {
		s.respondError(w, common.NewAppError("NO_AMOUNT", "amount must be non-zero", common.ErrInvalidInput))
		return
	}
	invoiceID, err := parseOptionalUUID(req.InvoiceID, "invoice_id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	date := time.Now().UTC()
	if d, err := parseOptionalDate(req.Date, "date"); err != nil {
		s.respondError(w, err)
		return
	} else if d != nil {
		date = *d
	}

	// Wallet moves must belong to an existing partner.
	if _, err := s.partners.GetByID(r.Context(), partnerID); err != nil {
		s.respondError(w, err)
		return
	}

	m := &entity.WalletMove{
		ID:        uuid.New(),
		PartnerID: partnerID,
		CompanyID: companyID,
		Date:      date,
		Amount:    req.Amount,
		Note:      req.Note,
		InvoiceID: invoiceID,
	}
	if err := s.wallets.Insert(r.Context(), m); err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListWalletMoves(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_COMPANY_ID", "company_id query parameter must be a UUID", common.ErrInvalidInput))
		return
	}
	moves, err := s.wallets.ListByPartner(r.Context(), partnerID, companyID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"moves":   moves,
		"count":   ledger.WalletCount(moves),
		"balance": ledger.WalletBalance(moves),
	})
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	partnerID, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	companyID, err := uuid.Parse(r.URL.Query().Get("company_id"))
	if err != nil {
		s.respondError(w, common.NewAppError("BAD_COMPANY_ID", "company_id query parameter must be a UUID", common.ErrInvalidInput))
		return
	}
	var asOf time.Time
	if d, err := parseOptionalDate(r.URL.Query().Get("as_of"), "as_of"); err != nil {
		s.respondError(w, err)
		return
	} else if d != nil {
		asOf = *d
	}

	data, err := s.export.PartnerStatementXLSX(r.Context(), partnerID, companyID, asOf)
	if err != nil {
		s.respondError(w, err)
		return
	}
	filename := fmt.Sprintf("statement-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	inv, err := s.invoices.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) handleCancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		s.respondError(w, err)
		return
	}
	if err := s.invoices.Cancel(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	inv, err := s.invoices.GetByID(r.Context(), id)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
