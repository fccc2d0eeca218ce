package employees

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

var ErrDuplicateEmployee = errors.New("employee already exists")

type EmployeeService interface {
	ListEmployees(ctx context.Context) (map[string]EmployeeDetails, error)
	GetEmployee(ctx context.Context, nameID string) (EmployeeDetails, error)
	CreateEmployee(ctx context.Context, e Employee) error
	UpdateEmployee(ctx context.Context, e Employee) error
}

type employeeService struct {
	repo EmployeeRepository
	log  *logrus.Entry
}

func NewEmployeeService(repo EmployeeRepository, log *logrus.Entry) EmployeeService {
	return &employeeService{repo: repo, log: log}
}

// ListEmployees returns employees keyed by their id, the shape the asset
// forms consume directly.
func (s *employeeService) ListEmployees(ctx context.Context) (map[string]EmployeeDetails, error) {
	list, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make(map[string]EmployeeDetails, len(list))
	for _, e := range list {
		result[e.NameID] = e.details()
	}

	s.log.WithField("count", len(result)).Debug("employees listed")
	return result, nil
}

func (s *employeeService) GetEmployee(ctx context.Context, nameID string) (EmployeeDetails, error) {
	e, err := s.repo.GetByID(ctx, nameID)
	if err != nil {
		return EmployeeDetails{}, err
	}
	return e.details(), nil
}

func (s *employeeService) CreateEmployee(ctx context.Context, e Employee) error {
	if err := s.repo.Create(ctx, e); err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return ErrDuplicateEmployee
		}
		return err
	}

	s.log.WithField("employee_id", e.NameID).Info("employee created")
	return nil
}

func (s *employeeService) UpdateEmployee(ctx context.Context, e Employee) error {
	if err := s.repo.Update(ctx, e); err != nil {
		return err
	}

	s.log.WithField("employee_id", e.NameID).Info("employee updated")
	return nil
}
