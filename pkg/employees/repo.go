package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrEmployeeNotFound = errors.New("employee not found")

type EmployeeRepository interface {
	GetAll(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, nameID string) (Employee, error)
	Create(ctx context.Context, e Employee) error
	Update(ctx context.Context, e Employee) error
}

type postgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresEmployeeRepository(pool *pgxpool.Pool) EmployeeRepository {
	return &postgresEmployeeRepository{pool: pool}
}

func (r *postgresEmployeeRepository) GetAll(ctx context.Context) ([]Employee, error) {
	query := `SELECT name_id, COALESCE(name, ''), COALESCE(department, ''), COALESCE(email, '')
	          FROM peopledata
	          ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.NameID, &e.Name, &e.Department, &e.Email); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *postgresEmployeeRepository) GetByID(ctx context.Context, nameID string) (Employee, error) {
	query := `SELECT name_id, COALESCE(name, ''), COALESCE(department, ''), COALESCE(email, '')
	          FROM peopledata
	          WHERE name_id = $1`

	var e Employee
	err := r.pool.QueryRow(ctx, query, nameID).Scan(&e.NameID, &e.Name, &e.Department, &e.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return e, nil
}

func (r *postgresEmployeeRepository) Create(ctx context.Context, e Employee) error {
	query := `INSERT INTO peopledata (name_id, name, department, email)
	          VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, e.NameID, e.Name, e.Department, e.Email)
	return err
}

func (r *postgresEmployeeRepository) Update(ctx context.Context, e Employee) error {
	query := `UPDATE peopledata
	          SET name = $2, department = $3, email = $4
	          WHERE name_id = $1`

	cmd, err := r.pool.Exec(ctx, query, e.NameID, e.Name, e.Department, e.Email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
