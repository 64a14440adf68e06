package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/decode"
	"github.com/joseph-ayodele/vintrade/internal/ledger"
	"github.com/joseph-ayodele/vintrade/internal/vehicle"
	"github.com/joseph-ayodele/vintrade/internal/vin"
)

type errorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

type creditGuardDetails struct {
	PartnerID         string          `json:"partner_id"`
	PartnerName       string          `json:"partner_name"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	ReceivableBalance decimal.Decimal `json:"receivable_balance"`
	WalletBalance     decimal.Decimal `json:"wallet_balance"`
	Projected         decimal.Decimal `json:"projected"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// respondError maps domain errors onto HTTP statuses. Credit guard
// rejections carry their figures so the client can render the refusal.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	var onHold *ledger.OnHoldError
	if errors.As(err, &onHold) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: onHold.Error(),
			Code:  "PARTNER_ON_HOLD",
		})
		return
	}

	var exceeded *ledger.CreditLimitExceededError
	if errors.As(err, &exceeded) {
		details, _ := json.Marshal(creditGuardDetails{
			PartnerID:         exceeded.PartnerID.String(),
			PartnerName:       exceeded.PartnerName,
			CreditLimit:       exceeded.CreditLimit,
			ReceivableBalance: exceeded.ReceivableBalance,
			WalletBalance:     exceeded.WalletBalance,
			Projected:         exceeded.Projected,
		})
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   exceeded.Error(),
			Code:    "CREDIT_LIMIT_EXCEEDED",
			Details: details,
		})
		return
	}

	var lengthErr *vin.LengthError
	var forbiddenErr *vin.ForbiddenCharacterError
	var charsetErr *vin.CharsetError
	var checkErr *vin.CheckDigitMismatchError
	if errors.As(err, &lengthErr) || errors.As(err, &forbiddenErr) ||
		errors.As(err, &charsetErr) || errors.As(err, &checkErr) {
		writeError(w, http.StatusBadRequest, "INVALID_VIN", err.Error())
		return
	}

	var transitionErr *vehicle.TransitionError
	if errors.As(err, &transitionErr) {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
		return
	}

	var noResults *decode.NoResultsError
	if errors.As(err, &noResults) {
		writeError(w, http.StatusUnprocessableEntity, "DECODE_NO_RESULTS", err.Error())
		return
	}
	var transport *decode.TransportError
	if errors.As(err, &transport) {
		writeError(w, http.StatusBadGateway, "DECODE_UNAVAILABLE", err.Error())
		return
	}

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		writeError(w, statusFor(appErr), appErr.Code, appErr.Message)
		return
	}

	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, common.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		s.logger.Error("server.http.internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func statusFor(appErr *common.AppError) int {
	switch {
	case errors.Is(appErr.Cause, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(appErr.Cause, common.ErrConflict):
		return http.StatusConflict
	case errors.Is(appErr.Cause, common.ErrInvalidInput), errors.Is(appErr.Cause, common.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.NewAppError("BAD_JSON", "request body is not valid JSON for this endpoint", common.ErrInvalidInput)
	}
	return nil
}
