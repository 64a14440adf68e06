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

type PartnerRepository interface {
	Create(ctx context.Context, p *entity.Partner) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Partner, error)
	List(ctx context.Context, companyID uuid.UUID) ([]*entity.Partner, error)
	SetCreditProfile(ctx context.Context, id uuid.UUID, creditLimit decimal.Decimal, onHold bool) error
}

type partnerRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPartnerRepository(db *DB, logger *slog.Logger) PartnerRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &partnerRepository{db: db.SQL, logger: logger}
}

const partnerColumns = `id, company_id, name, email, credit_limit, on_hold, created_at, updated_at`

func (r *partnerRepository) Create(ctx context.Context, p *entity.Partner) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO partners (`+partnerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.CompanyID, p.Name, p.Email, p.CreditLimit, p.OnHold, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create partner", "name", p.Name, "error", err)
		return common.WrapError(err, "create partner")
	}
	return nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Partner, error) {
	var p entity.Partner
	err := r.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.Email, &p.CreditLimit, &p.OnHold, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "get partner")
	}
	return &p, nil
}

func (r *partnerRepository) List(ctx context.Context, companyID uuid.UUID) ([]*entity.Partner, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE company_id = $1 ORDER BY name`, companyID)
	if err != nil {
		r.logger.Error("failed to list partners", "company_id", companyID, "error", err)
		return nil, common.WrapError(err, "list partners")
	}
	defer rows.Close()

	var out []*entity.Partner
	for rows.Next() {
		var p entity.Partner
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Email, &p.CreditLimit, &p.OnHold, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, common.WrapError(err, "scan partner")
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *partnerRepository) SetCreditProfile(ctx context.Context, id uuid.UUID, creditLimit decimal.Decimal, onHold bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE partners SET credit_limit = $1, on_hold = $2, updated_at = $3 WHERE id = $4`,
		creditLimit, onHold, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("failed to set credit profile", "id", id, "error", err)
		return common.WrapError(err, "set credit profile")
	}
	return requireRow(res)
}
