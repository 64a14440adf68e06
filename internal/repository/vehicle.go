package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vintrade/internal/common"
	"github.com/joseph-ayodele/vintrade/internal/entity"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error)
	GetByVIN(ctx context.Context, vin string) (*entity.Vehicle, error)
	List(ctx context.Context, companyID uuid.UUID, status string) ([]*entity.Vehicle, error)
	Update(ctx context.Context, v *entity.Vehicle) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	LinkVendorBill(ctx context.Context, id, invoiceID uuid.UUID) error
	LinkCustomerInvoice(ctx context.Context, id, invoiceID uuid.UUID) error
	AppendNote(ctx context.Context, id uuid.UUID, note string) error
}

type vehicleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewVehicleRepository(db *DB, logger *slog.Logger) VehicleRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &vehicleRepository{db: db.SQL, logger: logger}
}

const vehicleColumns = `id, company_id, reference, vin, vin_check_ok,
	year, make, model, trim, body_type, exterior_color, distance_travelled, distance_uom, notes,
	purchase_date, seller_id, lot_number, purchase_price, auction_fees, other_fees, repair_estimate,
	buyer_id, expected_sale_price, sale_price, currency_code,
	manufacturer, plant_country, engine_cylinders, displacement,
	fuel_type, fuel_type_secondary, electrification_level, decoded_at, decode_raw, is_dangerous_goods,
	status, vendor_bill_id, customer_invoice_id, created_at, updated_at`

func (r *vehicleRepository) Create(ctx context.Context, v *entity.Vehicle) error {
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO vehicles (`+vehicleColumns+`) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9, $10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19, $20, $21,
		$22, $23, $24, $25,
		$26, $27, $28, $29,
		$30, $31, $32, $33, $34, $35,
		$36, $37, $38, $39, $40)`,
		v.ID, v.CompanyID, v.Reference, v.VIN, v.VINCheckOK,
		v.Year, v.Make, v.Model, v.Trim, v.BodyType, v.ExteriorColor, v.Distance, v.DistanceUnit, v.Notes,
		v.PurchaseDate, v.SellerID, v.LotNumber, v.PurchasePrice, v.AuctionFees, v.OtherFees, v.RepairEstimate,
		v.BuyerID, v.ExpectedSalePrice, v.SalePrice, v.CurrencyCode,
		v.Manufacturer, v.PlantCountry, v.EngineCylinders, v.Displacement,
		v.FuelTypePrimary, v.FuelTypeSecondary, v.ElectrificationLevel, v.DecodedAt, v.DecodeRaw, v.IsDangerousGoods,
		v.Status, v.VendorBillID, v.CustomerInvoiceID, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewAppError("VIN_EXISTS", "this VIN already exists", common.ErrConflict)
		}
		r.logger.Error("failed to create vehicle", "vin", v.VIN, "error", err)
		return common.WrapError(err, "create vehicle")
	}
	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
	return scanVehicle(row)
}

func (r *vehicleRepository) GetByVIN(ctx context.Context, vin string) (*entity.Vehicle, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE vin = $1`, vin)
	return scanVehicle(row)
}

func (r *vehicleRepository) List(ctx context.Context, companyID uuid.UUID, status string) ([]*entity.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE company_id = $1`
	args := []any{companyID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list vehicles", "company_id", companyID, "error", err)
		return nil, common.WrapError(err, "list vehicles")
	}
	defer rows.Close()

	var out []*entity.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *vehicleRepository) Update(ctx context.Context, v *entity.Vehicle) error {
	v.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `UPDATE vehicles SET
		reference = $1, vin = $2, vin_check_ok = $3,
		year = $4, make = $5, model = $6, trim = $7, body_type = $8, exterior_color = $9,
		distance_travelled = $10, distance_uom = $11, notes = $12,
		purchase_date = $13, seller_id = $14, lot_number = $15,
		purchase_price = $16, auction_fees = $17, other_fees = $18, repair_estimate = $19,
		buyer_id = $20, expected_sale_price = $21, sale_price = $22, currency_code = $23,
		manufacturer = $24, plant_country = $25, engine_cylinders = $26, displacement = $27,
		fuel_type = $28, fuel_type_secondary = $29, electrification_level = $30,
		decoded_at = $31, decode_raw = $32, is_dangerous_goods = $33,
		status = $34, updated_at = $35
		WHERE id = $36`,
		v.Reference, v.VIN, v.VINCheckOK,
		v.Year, v.Make, v.Model, v.Trim, v.BodyType, v.ExteriorColor,
		v.Distance, v.DistanceUnit, v.Notes,
		v.PurchaseDate, v.SellerID, v.LotNumber,
		v.PurchasePrice, v.AuctionFees, v.OtherFees, v.RepairEstimate,
		v.BuyerID, v.ExpectedSalePrice, v.SalePrice, v.CurrencyCode,
		v.Manufacturer, v.PlantCountry, v.EngineCylinders, v.Displacement,
		v.FuelTypePrimary, v.FuelTypeSecondary, v.ElectrificationLevel,
		v.DecodedAt, v.DecodeRaw, v.IsDangerousGoods,
		v.Status, v.UpdatedAt, v.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewAppError("VIN_EXISTS", "this VIN already exists", common.ErrConflict)
		}
		r.logger.Error("failed to update vehicle", "id", v.ID, "error", err)
		return common.WrapError(err, "update vehicle")
	}
	return requireRow(res)
}

func (r *vehicleRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("failed to set vehicle status", "id", id, "status", status, "error", err)
		return common.WrapError(err, "set vehicle status")
	}
	return requireRow(res)
}

func (r *vehicleRepository) LinkVendorBill(ctx context.Context, id, invoiceID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET vendor_bill_id = $1, updated_at = $2 WHERE id = $3 AND vendor_bill_id IS NULL`,
		invoiceID, time.Now().UTC(), id)
	if err != nil {
		return common.WrapError(err, "link vendor bill")
	}
	return requireRow(res)
}

func (r *vehicleRepository) LinkCustomerInvoice(ctx context.Context, id, invoiceID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET customer_invoice_id = $1, updated_at = $2 WHERE id = $3 AND customer_invoice_id IS NULL`,
		invoiceID, time.Now().UTC(), id)
	if err != nil {
		return common.WrapError(err, "link customer invoice")
	}
	return requireRow(res)
}

// AppendNote records an informational line on the vehicle (decode failures,
// bill creation problems) without failing the enclosing operation.
func (r *vehicleRepository) AppendNote(ctx context.Context, id uuid.UUID, note string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vehicles SET notes = CASE WHEN notes = '' THEN $1 ELSE notes || $2 || $1 END, updated_at = $3 WHERE id = $4`,
		note, "\n", time.Now().UTC(), id)
	if err != nil {
		return common.WrapError(err, "append vehicle note")
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*entity.Vehicle, error) {
	var v entity.Vehicle
	err := row.Scan(
		&v.ID, &v.CompanyID, &v.Reference, &v.VIN, &v.VINCheckOK,
		&v.Year, &v.Make, &v.Model, &v.Trim, &v.BodyType, &v.ExteriorColor, &v.Distance, &v.DistanceUnit, &v.Notes,
		&v.PurchaseDate, &v.SellerID, &v.LotNumber, &v.PurchasePrice, &v.AuctionFees, &v.OtherFees, &v.RepairEstimate,
		&v.BuyerID, &v.ExpectedSalePrice, &v.SalePrice, &v.CurrencyCode,
		&v.Manufacturer, &v.PlantCountry, &v.EngineCylinders, &v.Displacement,
		&v.FuelTypePrimary, &v.FuelTypeSecondary, &v.ElectrificationLevel, &v.DecodedAt, &v.DecodeRaw, &v.IsDangerousGoods,
		&v.Status, &v.VendorBillID, &v.CustomerInvoiceID, &v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(err, "scan vehicle")
	}
	return &v, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// isUniqueViolation matches Postgres 23505 and the sqlite UNIQUE message
// without importing driver-specific error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
