package summary

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SummaryRepository interface {
	GetSummary(ctx context.Context) ([]SummaryRow, error)
	Ping(ctx context.Context) error
}

type postgresSummaryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSummaryRepository(pool *pgxpool.Pool) SummaryRepository {
	return &postgresSummaryRepository{pool: pool}
}

func (r *postgresSummaryRepository) GetSummary(ctx context.Context) ([]SummaryRow, error) {
	query := `SELECT COALESCE(asset_type, ''), department, COALESCE(brand, ''), COALESCE(model, ''), asset_count
	          FROM summarydata
	          ORDER BY asset_type`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SummaryRow
	for rows.Next() {
		var row SummaryRow
		if err := rows.Scan(&row.AssetType, &row.Department, &row.Brand, &row.Model, &row.Count); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *postgresSummaryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
