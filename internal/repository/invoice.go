package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/entity"
)

type InvoiceRepository interface {
	// Create stores the invoice and its receivable ledger line in one
	// transaction. Vendor bills carry no receivable line.
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	ListByPartnerUntil(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) ([]*entity.Invoice, error)
	Cancel(ctx context.Context, id uuid.UUID) error

	// ReceivableBalance is the live sum of receivable line balances for a
	// partner/company, excluding lines of cancelled documents.
	ReceivableBalance(ctx context.Context, partnerID, companyID uuid.UUID) (decimal.Decimal, error)
}

type invoiceRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db.SQL, logger: logger}
}

const invoiceColumns = `id, kind, state, partner_id, company_id, vehicle_id, invoice_date, amount, currency_code, description, origin, created_at`

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	inv.CreatedAt = time.Now().UTC()
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	if inv.State == "" {
		inv.State = entity.InvoiceStateDraft
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin create invoice")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.Kind, inv.State, inv.PartnerID, inv.CompanyID, inv.VehicleID,
		inv.InvoiceDate, inv.Amount, inv.Currency, inv.Description, inv.Origin, inv.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create invoice", "kind", inv.Kind, "error", err)
		return common.WrapError(err, "create invoice")
	}

	// Customer invoices add to the customer's receivable; vendor bills sit
	// on the payable side and do not.
	if inv.Kind == entity.InvoiceKindCustomerInvoice {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ledger_lines (id, partner_id, company_id, invoice_id, account_type, parent_state, balance, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(), inv.PartnerID, inv.CompanyID, inv.ID,
			entity.AccountTypeReceivable, inv.State, inv.Amount, inv.CreatedAt)
		if err != nil {
			r.logger.Error("failed to create receivable line", "invoice_id", inv.ID, "error", err)
			return common.WrapError(err, "create receivable line")
		}
	}

	return tx.Commit()
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id).
		Scan(&inv.ID, &inv.Kind, &inv.State, &inv.PartnerID, &inv.CompanyID, &inv.VehicleID,
			&inv.InvoiceDate, &inv.Amount, &inv.Currency, &inv.Description, &inv.Origin, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get invoice")
	}
	return &inv, nil
}

func (r *invoiceRepository) ListByPartnerUntil(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) ([]*entity.Invoice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices
		 WHERE partner_id = $1 AND company_id = $2 AND invoice_date <= $3
		 ORDER BY invoice_date, created_at`,
		partnerID, companyID, asOf)
	if err != nil {
		r.logger.Error("failed to list invoices", "partner_id", partnerID, "error", err)
		return nil, common.WrapError(err, "list invoices")
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		var inv entity.Invoice
		if err := rows.Scan(&inv.ID, &inv.Kind, &inv.State, &inv.PartnerID, &inv.CompanyID, &inv.VehicleID,
			&inv.InvoiceDate, &inv.Amount, &inv.Currency, &inv.Description, &inv.Origin, &inv.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan invoice")
		}
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// Cancel marks the invoice cancelled and mirrors the state onto its ledger
// lines so they stop counting toward the receivable balance.
func (r *invoiceRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(err, "begin cancel invoice")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE invoices SET state = $1 WHERE id = $2`, entity.InvoiceStateCancelled, id)
	if err != nil {
		return common.WrapError(err, "cancel invoice")
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ledger_lines SET parent_state = $1 WHERE invoice_id = $2`,
		entity.InvoiceStateCancelled, id); err != nil {
		return common.WrapError(err, "cancel receivable lines")
	}
	return tx.Commit()
}

func (r *invoiceRepository) ReceivableBalance(ctx context.Context, partnerID, companyID uuid.UUID) (decimal.Decimal, error) {
	var sum sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(balance) FROM ledger_lines
		 WHERE partner_id = $1 AND company_id = $2
		   AND account_type = $3 AND parent_state != $4`,
		partnerID, companyID, entity.AccountTypeReceivable, entity.InvoiceStateCancelled).Scan(&sum)
	if err != nil {
		r.logger.Error("failed to sum receivable balance", "partner_id", partnerID, "error", err)
		return decimal.Zero, common.WrapError(err, "receivable balance")
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	bal, err := decimal.NewFromString(sum.String)
	if err != nil {
		return decimal.Zero, common.WrapError(err, "parse receivable balance")
	}
	return bal, nil
}
