package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/entity"
)

// WalletRepository stores wallet movements. Moves are insert-only; there is
// no update or delete path.
type WalletRepository interface {
	Insert(ctx context.Context, m *entity.WalletMove) error
	ListByPartner(ctx context.Context, partnerID, companyID uuid.UUID) ([]entity.WalletMove, error)
	ListUntil(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) ([]entity.WalletMove, error)
}

type walletRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewWalletRepository(db *DB, logger *slog.Logger) WalletRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &walletRepository{db: db.SQL, logger: logger}
}

const walletColumns = `id, partner_id, company_id, date, amount, note, invoice_id, created_at`

func (r *walletRepository) Insert(ctx context.Context, m *entity.WalletMove) error {
	m.CreatedAt = time.Now().UTC()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Date.IsZero() {
		m.Date = m.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallet_moves (`+walletColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.PartnerID, m.CompanyID, m.Date, m.Amount, m.Note, m.InvoiceID, m.CreatedAt)
	if err != nil {
		r.logger.Error("failed to insert wallet move", "partner_id", m.PartnerID, "error", err)
		return common.WrapError(err, "insert wallet move")
	}
	return nil
}

func (r *walletRepository) ListByPartner(ctx context.Context, partnerID, companyID uuid.UUID) ([]entity.WalletMove, error) {
	return r.list(ctx,
		`SELECT `+walletColumns+` FROM wallet_moves
		 WHERE partner_id = $1 AND company_id = $2
		 ORDER BY date DESC, created_at DESC`,
		partnerID, companyID)
}

func (r *walletRepository) ListUntil(ctx context.Context, partnerID, companyID uuid.UUID, asOf time.Time) ([]entity.WalletMove, error) {
	return r.list(ctx,
		`SELECT `+walletColumns+` FROM wallet_moves
		 WHERE partner_id = $1 AND company_id = $2 AND date <= $3
		 ORDER BY date, created_at`,
		partnerID, companyID, asOf)
}

func (r *walletRepository) list(ctx context.Context, query string, args ...any) ([]entity.WalletMove, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list wallet moves", "error", err)
		return nil, common.WrapError(err, "list wallet moves")
	}
	defer rows.Close()

	var out []entity.WalletMove
	for rows.Next() {
		var m entity.WalletMove
		if err := rows.Scan(&m.ID, &m.PartnerID, &m.CompanyID, &m.Date, &m.Amount, &m.Note, &m.InvoiceID, &m.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan wallet move")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
