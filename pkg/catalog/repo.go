package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository interface {
	GetAssetTypes(ctx context.Context) ([]string, error)
	GetAllSpecifications(ctx context.Context) (map[string]TypeSpecifications, error)
	GetSpecificationsForType(ctx context.Context, typeName string) ([]SpecField, error)
	GetBrands(ctx context.Context) ([]Brand, error)
	CreateBrand(ctx context.Context, name string, models []string) error
}

type postgresCatalogRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &postgresCatalogRepository{pool: pool}
}

func (r *postgresCatalogRepository) GetAssetTypes(ctx context.Context) ([]string, error) {
	query := `SELECT type_name FROM assettypes ORDER BY type_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		types = append(types, name)
	}
	return types, rows.Err()
}

func (r *postgresCatalogRepository) GetAllSpecifications(ctx context.Context) (map[string]TypeSpecifications, error) {
	query := `SELECT t.type_name, s.field_key, s.field_label, COALESCE(s.placeholder, '')
	          FROM assetspecifications s
	          JOIN assettypes t ON t.id = s.asset_type_id
	          ORDER BY t.type_name, s.id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]TypeSpecifications)
	for rows.Next() {
		var typeName string
		var field SpecField
		if err := rows.Scan(&typeName, &field.Key, &field.Label, &field.Placeholder); err != nil {
			return nil, err
		}
		entry := result[typeName]
		entry.Fields = append(entry.Fields, field)
		result[typeName] = entry
	}
	return result, rows.Err()
}

func (r *postgresCatalogRepository) GetSpecificationsForType(ctx context.Context, typeName string) ([]SpecField, error) {
	query := `SELECT s.field_key, s.field_label, COALESCE(s.placeholder, '')
	          FROM assetspecifications s
	          JOIN assettypes t ON t.id = s.asset_type_id
	          WHERE t.type_name = $1
	          ORDER BY s.id`

	rows, err := r.pool.Query(ctx, query, typeName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []SpecField
	for rows.Next() {
		var field SpecField
		if err := rows.Scan(&field.Key, &field.Label, &field.Placeholder); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}

func (r *postgresCatalogRepository) GetBrands(ctx context.Context) ([]Brand, error) {
	query := `SELECT b.brand_name, COALESCE(m.model_name, '')
	          FROM branddata b
	          LEFT JOIN brandmodels m ON m.brand_id = b.id
	          ORDER BY b.brand_name, m.model_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var brands []Brand
	for rows.Next() {
		var brandName, modelName string
		if err := rows.Scan(&brandName, &modelName); err != nil {
			return nil, err
		}

		if len(brands) == 0 || brands[len(brands)-1].Name != brandName {
			brands = append(brands, Brand{Name: brandName})
		}
		if modelName != "" {
			last := &brands[len(brands)-1]
			last.Models = append(last.Models, modelName)
		}
	}
	return brands, rows.Err()
}

// CreateBrand upserts the brand row and attaches any new models to it.
func (r *postgresCatalogRepository) CreateBrand(ctx context.Context, name string, models []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var brandID int
	err = tx.QueryRow(ctx,
		`INSERT INTO branddata (brand_name) VALUES ($1)
		 ON CONFLICT (brand_name) DO UPDATE SET brand_name = EXCLUDED.brand_name
		 RETURNING id`, name).Scan(&brandID)
	if err != nil {
		return err
	}

	for _, model := range models {
		if model == "" {
			continue
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO brandmodels (brand_id, model_name) VALUES ($1, $2)
			 ON CONFLICT ON CONSTRAINT unique_brand_model DO NOTHING`, brandID, model)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
