package repairs

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrTempAssetNotFound = errors.New("temp asset not found")
	ErrRepairInProgress  = errors.New("asset already under repair")
	ErrNoOpenRepair      = errors.New("no repair in progress")
)

type RepairRepository interface {
	Start(ctx context.Context, input StartRepairInput) error
	End(ctx context.Context, assetID string) error
	ListOpen(ctx context.Context) ([]Repair, error)
}

type postgresRepairRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepairRepository(pool *pgxpool.Pool) RepairRepository {
	return &postgresRepairRepository{pool: pool}
}

// Start opens a tracker row and flags the asset, all in one transaction.
// When a temp asset is named and the repaired asset has a holder, the temp
// asset is handed to that holder with a fresh assignment span.
func (r *postgresRepairRepository) Start(ctx context.Context, input StartRepairInput) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var underRepair bool
	var holder *string
	err = tx.QueryRow(ctx,
		`SELECT repair_status, assigned_to FROM assetdata WHERE asset_id = $1 FOR UPDATE`,
		input.AssetID).Scan(&underRepair, &holder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAssetNotFound
		}
		return err
	}
	if underRepair {
		return ErrRepairInProgress
	}

	var open bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM repairstatustracker WHERE asset_id = $1 AND repair_end IS NULL)`,
		input.AssetID).Scan(&open)
	if err != nil {
		return err
	}
	if open {
		return ErrRepairInProgress
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO repairstatustracker (asset_id, temp_asset_id, repair_details)
		 VALUES ($1, NULLIF($2, ''), $3)`,
		input.AssetID, input.TempAssetID, input.RepairDetails)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE assetdata SET repair_status = TRUE, updated_at = now() WHERE asset_id = $1`,
		input.AssetID)
	if err != nil {
		return err
	}

	if input.TempAssetID != "" && holder != nil {
		if err := lendTempAsset(ctx, tx, input.TempAssetID, *holder); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// End closes the newest open tracker row, clears the repair flag and takes
// the temp asset back from the holder.
func (r *postgresRepairRepository) End(ctx context.Context, assetID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assetdata WHERE asset_id = $1)`, assetID).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrAssetNotFound
	}

	var trackerID int
	var tempID *string
	err = tx.QueryRow(ctx,
		`SELECT id, temp_asset_id FROM repairstatustracker
		 WHERE asset_id = $1 AND repair_end IS NULL
		 ORDER BY repair_start DESC
		 LIMIT 1
		 FOR UPDATE`,
		assetID).Scan(&trackerID, &tempID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNoOpenRepair
		}
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE repairstatustracker SET repair_end = now() WHERE id = $1`, trackerID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`UPDATE assetdata SET repair_status = FALSE, updated_at = now() WHERE asset_id = $1`,
		assetID)
	if err != nil {
		return err
	}

	if tempID != nil {
		_, err = tx.Exec(ctx,
			`UPDATE assignmenthistory
			 SET returned_on = CURRENT_DATE, is_active = FALSE
			 WHERE asset_id = $1 AND is_active`, *tempID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`UPDATE assetdata SET assigned_to = NULL, updated_at = now() WHERE asset_id = $1`,
			*tempID)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *postgresRepairRepository) ListOpen(ctx context.Context) ([]Repair, error) {
	query := `SELECT id, asset_id, temp_asset_id, repair_start, repair_end, COALESCE(repair_details, '')
	          FROM repairstatustracker
	          WHERE repair_end IS NULL
	          ORDER BY repair_start DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Repair
	for rows.Next() {
		var rep Repair
		if err := rows.Scan(&rep.ID, &rep.AssetID, &rep.TempAssetID, &rep.RepairStart, &rep.RepairEnd, &rep.RepairDetails); err != nil {
			return nil, err
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

// lendTempAsset hands the substitute unit to the holder, closing whatever
// span it currently occupies and marking it as a loaner.
func lendTempAsset(ctx context.Context, tx pgx.Tx, tempID, holder string) error {
	var current *string
	err := tx.QueryRow(ctx,
		`SELECT assigned_to FROM assetdata WHERE asset_id = $1 FOR UPDATE`, tempID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTempAssetNotFound
		}
		return err
	}

	if current != nil && *current != holder {
		_, err = tx.Exec(ctx,
			`UPDATE assignmenthistory
			 SET returned_on = CURRENT_DATE, is_active = FALSE
			 WHERE asset_id = $1 AND is_active`, tempID)
		if err != nil {
			return err
		}
	}

	if current == nil || *current != holder {
		var name string
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(name, '') FROM peopledata WHERE name_id = $1`, holder).Scan(&name)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		if name == "" {
			name = holder
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO assignmenthistory (asset_id, employee_id, employee_name, assigned_on, is_active)
			 VALUES ($1, $2, $3, CURRENT_DATE, TRUE)`,
			tempID, holder, name)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE assetdata SET assigned_to = $2, is_temp_asset = TRUE, updated_at = now() WHERE asset_id = $1`,
		tempID, holder)
	return err
}
