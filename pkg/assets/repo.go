package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAssetNotFound = errors.New("asset not found")

// Placeholder document paths recorded at create time until real files are
// uploaded for the asset.
const (
	placeholderImagePath    = "s3://dummy-bucket/assets/images/sample.jpg"
	placeholderReceiptPath  = "s3://dummy-bucket/assets/receipts/sample.pdf"
	placeholderWarrantyPath = "s3://dummy-bucket/assets/warranty/sample.pdf"
)

type AssetRepository interface {
	GetAll(ctx context.Context) ([]Asset, error)
	GetByID(ctx context.Context, assetID string) (Asset, error)
	GetSpecifications(ctx context.Context) (map[string][]SpecEntry, error)
	GetSpecificationsForAsset(ctx context.Context, assetID string) ([]SpecEntry, error)
	Create(ctx context.Context, input CreateAssetInput) (string, error)
	UpdateAssignment(ctx context.Context, assetID, newEmployeeID string, repairStatus bool) error
	DeleteBulk(ctx context.Context, assetIDs []string) (int64, error)
	GetHistory(ctx context.Context, assetID string) ([]HistorySpan, error)
	GetAllHistory(ctx context.Context) ([]HistorySpan, error)
	UpdateFilePath(ctx context.Context, assetID, kind, path string) error
}

type postgresAssetRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAssetRepository(pool *pgxpool.Pool) AssetRepository {
	return &postgresAssetRepository{pool: pool}
}

const assetColumns = `asset_id, COALESCE(serial_no, ''), COALESCE(asset_type, ''), COALESCE(brand, ''),
	COALESCE(model, ''), date_of_purchase, product_cost, gst, warranty_expiry,
	is_rental, lease_cost, lease_expiry, assigned_to, repair_status, is_temp_asset,
	asset_image_path, purchase_receipts_path, warranty_card_path`

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(
		&a.AssetID, &a.SerialNo, &a.AssetType, &a.Brand,
		&a.Model, &a.DateOfPurchase, &a.ProductCost, &a.GST, &a.WarrantyExpiry,
		&a.IsRental, &a.LeaseCost, &a.LeaseExpiry, &a.AssignedTo, &a.RepairStatus, &a.IsTempAsset,
		&a.AssetImagePath, &a.PurchaseReceiptsPath, &a.WarrantyCardPath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrAssetNotFound
		}
		return Asset{}, err
	}
	return a, nil
}

func (r *postgresAssetRepository) GetAll(ctx context.Context) ([]Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assetdata ORDER BY asset_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *postgresAssetRepository) GetByID(ctx context.Context, assetID string) (Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assetdata WHERE asset_id = $1`
	return scanAsset(r.pool.QueryRow(ctx, query, assetID))
}

func (r *postgresAssetRepository) GetSpecifications(ctx context.Context) (map[string][]SpecEntry, error) {
	query := `SELECT asset_id, COALESCE(spec_field_name, ''), COALESCE(spec_field_value, '')
	          FROM specdata
	          ORDER BY asset_id, id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]SpecEntry)
	for rows.Next() {
		var assetID string
		var entry SpecEntry
		if err := rows.Scan(&assetID, &entry.Name, &entry.Value); err != nil {
			return nil, err
		}
		result[assetID] = append(result[assetID], entry)
	}
	return result, rows.Err()
}

func (r *postgresAssetRepository) GetSpecificationsForAsset(ctx context.Context, assetID string) ([]SpecEntry, error) {
	query := `SELECT COALESCE(spec_field_name, ''), COALESCE(spec_field_value, '')
	          FROM specdata
	          WHERE asset_id = $1
	          ORDER BY id`

	rows, err := r.pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SpecEntry
	for rows.Next() {
		var entry SpecEntry
		if err := rows.Scan(&entry.Name, &entry.Value); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Create records the asset, its specification values and the opening
// assignment span in one transaction. The generated AST_<n> id comes from
// the single-row counter so ids survive deletes without reuse.
func (r *postgresAssetRepository) Create(ctx context.Context, input CreateAssetInput) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var counter int
	err = tx.QueryRow(ctx,
		`INSERT INTO assetidcounter (id, current_value) VALUES (1, 1001)
		 ON CONFLICT (id) DO UPDATE SET current_value = assetidcounter.current_value + 1
		 RETURNING current_value`).Scan(&counter)
	if err != nil {
		return "", err
	}
	assetID := fmt.Sprintf("AST_%d", counter)

	assignedTo := nullIfEmpty(input.AssignedTo)

	_, err = tx.Exec(ctx,
		`INSERT INTO assetdata (asset_id, serial_no, asset_type, brand, model, date_of_purchase,
		                        product_cost, gst, warranty_expiry, is_rental, lease_cost, lease_expiry,
		                        assigned_to, repair_status, is_temp_asset,
		                        asset_image_path, purchase_receipts_path, warranty_card_path)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		assetID, input.SerialNumber, input.AssetType, input.Brand, input.Model, input.PurchaseDate,
		input.PurchaseCost, input.GSTPaid, input.WarrantyExpiry, input.IsRental, input.LeaseCost, input.LeaseExpiry,
		assignedTo, input.RepairStatus, input.IsTempAsset,
		placeholderImagePath, placeholderReceiptPath, placeholderWarrantyPath)
	if err != nil {
		return "", err
	}

	// Spec values are stored under the catalog label for their key; keys
	// the catalog does not know keep their raw name.
	labels, err := specFieldLabels(ctx, tx, input.AssetType)
	if err != nil {
		return "", err
	}
	for key, value := range input.Specifications {
		if value == "" {
			continue
		}
		name := labels[key]
		if name == "" {
			name = key
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO specdata (asset_id, asset_type_name, spec_field_name, spec_field_value)
			 VALUES ($1, $2, $3, $4)`,
			assetID, input.AssetType, name, value)
		if err != nil {
			return "", err
		}
	}

	if assignedTo != nil {
		if err := openAssignment(ctx, tx, assetID, *assignedTo); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return assetID, nil
}

func (r *postgresAssetRepository) UpdateAssignment(ctx context.Context, assetID, newEmployeeID string, repairStatus bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var current *string
	err = tx.QueryRow(ctx, `SELECT assigned_to FROM assetdata WHERE asset_id = $1 FOR UPDATE`, assetID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAssetNotFound
		}
		return err
	}

	old := ""
	if current != nil {
		old = *current
	}

	if old != newEmployeeID {
		if old != "" {
			_, err = tx.Exec(ctx,
				`UPDATE assignmenthistory
				 SET returned_on = CURRENT_DATE, is_active = FALSE
				 WHERE asset_id = $1 AND employee_id = $2 AND is_active`,
				assetID, old)
			if err != nil {
				return err
			}
		}
		if newEmployeeID != "" {
			if err := openAssignment(ctx, tx, assetID, newEmployeeID); err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE assetdata
		 SET assigned_to = NULLIF($2, ''), repair_status = $3, updated_at = now()
		 WHERE asset_id = $1`,
		assetID, newEmployeeID, repairStatus)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresAssetRepository) DeleteBulk(ctx context.Context, assetIDs []string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM assetdata WHERE asset_id = ANY($1)`, assetIDs)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *postgresAssetRepository) GetHistory(ctx context.Context, assetID string) ([]HistorySpan, error) {
	query := `SELECT asset_id, employee_id, COALESCE(employee_name, ''), assigned_on, returned_on, is_active
	          FROM assignmenthistory
	          WHERE asset_id = $1
	          ORDER BY assigned_on DESC`
	return r.queryHistory(ctx, query, assetID)
}

func (r *postgresAssetRepository) GetAllHistory(ctx context.Context) ([]HistorySpan, error) {
	query := `SELECT asset_id, employee_id, COALESCE(employee_name, ''), assigned_on, returned_on, is_active
	          FROM assignmenthistory
	          ORDER BY asset_id, assigned_on DESC`
	return r.queryHistory(ctx, query)
}

func (r *postgresAssetRepository) queryHistory(ctx context.Context, query string, args ...any) ([]HistorySpan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spans []HistorySpan
	for rows.Next() {
		var s HistorySpan
		if err := rows.Scan(&s.AssetID, &s.EmployeeID, &s.EmployeeName, &s.AssignedOn, &s.ReturnedOn, &s.IsActive); err != nil {
			return nil, err
		}
		spans = append(spans, s)
	}
	return spans, rows.Err()
}

func (r *postgresAssetRepository) UpdateFilePath(ctx context.Context, assetID, kind, path string) error {
	var column string
	switch kind {
	case "image":
		column = "asset_image_path"
	case "receipt":
		column = "purchase_receipts_path"
	case "warranty":
		column = "warranty_card_path"
	default:
		return fmt.Errorf("unknown file kind %q", kind)
	}

	query := fmt.Sprintf(`UPDATE assetdata SET %s = $2, updated_at = now() WHERE asset_id = $1`, column)
	cmd, err := r.pool.Exec(ctx, query, assetID, path)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// openAssignment starts an active span, resolving the employee's display
// name and falling back to the raw id when no name is on file.
func openAssignment(ctx context.Context, tx pgx.Tx, assetID, employeeID string) error {
	var name string
	err := tx.QueryRow(ctx, `SELECT COALESCE(name, '') FROM peopledata WHERE name_id = $1`, employeeID).Scan(&name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if name == "" {
		name = employeeID
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO assignmenthistory (asset_id, employee_id, employee_name, assigned_on, is_active)
		 VALUES ($1, $2, $3, CURRENT_DATE, TRUE)`,
		assetID, employeeID, name)
	return err
}

func specFieldLabels(ctx context.Context, tx pgx.Tx, assetType string) (map[string]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT s.field_key, s.field_label
		 FROM assetspecifications s
		 JOIN assettypes t ON t.id = s.asset_type_id
		 WHERE t.type_name = $1`, assetType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := make(map[string]string)
	for rows.Next() {
		var key, label string
		if err := rows.Scan(&key, &label); err != nil {
			return nil, err
		}
		labels[key] = label
	}
	return labels, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
