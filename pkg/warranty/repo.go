package warranty

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExpiringWarranty is an asset whose warranty runs out inside the scan window.
type ExpiringWarranty struct {
	AssetID     string
	AssetType   string
	Brand       string
	Model       string
	AssignedTo  string
	WarrantyEnd time.Time
}

type WarrantyRepository interface {
	ListExpiring(ctx context.Context, until time.Time) ([]ExpiringWarranty, error)
}

type postgresWarrantyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresWarrantyRepository(pool *pgxpool.Pool) WarrantyRepository {
	return &postgresWarrantyRepository{pool: pool}
}

// ListExpiring returns assets whose warranty ends between today and until,
// soonest first. Warranties that already lapsed are not reported again on
// every run.
func (r *postgresWarrantyRepository) ListExpiring(ctx context.Context, until time.Time) ([]ExpiringWarranty, error) {
	query := `SELECT a.asset_id, COALESCE(a.asset_type, ''), COALESCE(a.brand, ''), COALESCE(a.model, ''),
	                 COALESCE(p.name, ''), a.warranty_expiry
	          FROM assetdata a
	          LEFT JOIN peopledata p ON a.assigned_to = p.name_id
	          WHERE a.warranty_expiry IS NOT NULL
	            AND a.warranty_expiry >= CURRENT_DATE
	            AND a.warranty_expiry <= $1
	          ORDER BY a.warranty_expiry, a.asset_id`

	rows, err := r.pool.Query(ctx, query, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ExpiringWarranty
	for rows.Next() {
		var e ExpiringWarranty
		if err := rows.Scan(&e.AssetID, &e.AssetType, &e.Brand, &e.Model, &e.AssignedTo, &e.WarrantyEnd); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
