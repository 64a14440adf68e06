package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/vintrade/internal/entity"
	"github.com/joseph-ayodele/vintrade/internal/ledger"
	"github.com/joseph-ayodele/vintrade/internal/repository"
)

// Service is a small façade over the repositories that produces XLSX bytes
// for partner statements.
type Service struct {
	partners repository.PartnerRepository
	invoices repository.InvoiceRepository
	wallets  repository.WalletRepository
	logger   *slog.Logger
}

func NewService(
	partners repository.PartnerRepository,
	invoices repository.InvoiceRepository,
	wallets repository.WalletRepository,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{partners: partners, invoices: invoices, wallets: wallets, logger: logger}
}

// statementRow is one movement on the statement, in chronological order.
type statementRow struct {
	date        time.Time
	kind        string
	reference   string
	description string
	debit       decimal.Decimal
	credit      decimal.Decimal
}

// PartnerStatementXLSX returns an XLSX workbook with the partner's invoices
// and wallet movements up to asOf (inclusive), with a running balance.
// A zero asOf means today.
func (s *Service) PartnerStatementXLSX(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) ([]byte, error) {
	start := time.Now()

	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	asOf = time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 23, 59, 59, 0, time.UTC)

	partner, err := s.partners.GetByID(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("load partner: %w", err)
	}
	invoices, err := s.invoices.ListByPartnerUntil(ctx, partnerID, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	moves, err := s.wallets.ListUntil(ctx, partnerID, companyID, asOf)
	if err != nil {
		return nil, fmt.Errorf("query wallet moves: %w", err)
	}

	rows := make([]statementRow, 0, len(invoices)+len(moves))
	for _, inv := range invoices {
		if inv.State == entity.InvoiceStateCancelled {
			continue
		}
		row := statementRow{
			date:        inv.InvoiceDate,
			reference:   inv.Origin,
			description: inv.Description,
		}
		switch inv.Kind {
		case entity.InvoiceKindCustomerInvoice:
			row.kind = "Invoice"
			row.debit = inv.Amount
		case entity.InvoiceKindVendorBill:
			row.kind = "Vendor Bill"
			row.credit = inv.Amount
		default:
			continue
		}
		rows = append(rows, row)
	}
	for _, m := range moves {
		rows = append(rows, statementRow{
			date:        m.Date,
			kind:        "Wallet",
			description: m.Note,
			credit:      m.Amount,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.Before(rows[j].date) })

	f := excelize.NewFile()
	const sheet = "Statement"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if defIdx, _ := f.GetSheetIndex("Sheet1"); defIdx != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("Statement for %s", partner.Name))
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("As of %s", asOf.Format("2006-01-02")))

	headers := []string{"Date", "Type", "Reference", "Description", "Debit", "Credit", "Balance"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		_ = f.SetCellValue(sheet, cell, h)
	}

	balance := decimal.Zero
	rowIdx := 5
	for _, row := range rows {
		balance = balance.Add(row.debit).Sub(row.credit)
		values := []interface{}{
			row.date.Format("2006-01-02"),
			row.kind,
			row.reference,
			row.description,
			cellAmount(row.debit),
			cellAmount(row.credit),
			balance.StringFixed(2),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			_ = f.SetCellValue(sheet, cell, v)
		}
		rowIdx++
	}

	_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", rowIdx+1), "Outstanding balance")
	_ = f.SetCellValue(sheet, fmt.Sprintf("G%d", rowIdx+1), balance.StringFixed(2))
	_ = f.SetColWidth(sheet, "A", "D", 22)
	_ = f.SetColWidth(sheet, "E", "G", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.statement.ok",
		"partner_id", partnerID, "rows", len(rows),
		"balance", balance, "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// OutstandingBalance computes the partner's receivable position at asOf:
// posted receivables minus the wallet balance.
func (s *Service) OutstandingBalance(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	receivable, err := s.invoices.ReceivableBalance(ctx, partnerID, companyID)
	if err != nil {
		return decimal.Zero, err
	}
	moves, err := s.wallets.ListUntil(ctx, partnerID, companyID, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return receivable.Sub(ledger.WalletBalance(moves)), nil
}

func cellAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
