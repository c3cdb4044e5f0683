package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/perf-review-api/internal/models"
)

// EmployeeRepository reads employees and their current manager mappings.
// Mapping mutation belongs to the employee management surface, not here.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository instantiates an employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// FindByID loads an employee by identifier.
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*models.Employee, error) {
	const query = `SELECT id, organisation_id, employee_code, first_name, last_name,
		email, designation_id, active, created_at
	FROM employees WHERE id = $1`
	var employee models.Employee
	if err := r.db.GetContext(ctx, &employee, query, id); err != nil {
		return nil, err
	}
	return &employee, nil
}

// CurrentManagers returns the employee's current first/second managers, two
// rows at most. A row is current while ends_at is NULL.
func (r *EmployeeRepository) CurrentManagers(ctx context.Context, employeeID string) ([]models.ManagerMapping, error) {
	const query = `SELECT id, employee_id, manager_id, manager_type, starts_at, ends_at
	FROM manager_mappings
	WHERE employee_id = $1 AND ends_at IS NULL
	ORDER BY manager_type`
	var mappings []models.ManagerMapping
	if err := r.db.SelectContext(ctx, &mappings, query, employeeID); err != nil {
		return nil, fmt.Errorf("current managers: %w", err)
	}
	return mappings, nil
}

// CurrentManager returns one manager slot of the employee, or nil when the
// slot is unassigned.
func (r *EmployeeRepository) CurrentManager(ctx context.Context, employeeID string, managerType models.ManagerType) (*models.ManagerMapping, error) {
	const query = `SELECT id, employee_id, manager_id, manager_type, starts_at, ends_at
	FROM manager_mappings
	WHERE employee_id = $1 AND manager_type = $2 AND ends_at IS NULL
	LIMIT 1`
	var mapping models.ManagerMapping
	if err := r.db.GetContext(ctx, &mapping, query, employeeID, managerType); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("current manager: %w", err)
	}
	return &mapping, nil
}

// ListReportees returns employees whose current first or second manager is the
// given manager.
func (r *EmployeeRepository) ListReportees(ctx context.Context, managerID string) ([]models.Employee, error) {
	const query = `SELECT e.id, e.organisation_id, e.employee_code, e.first_name, e.last_name,
		e.email, e.designation_id, e.active, e.created_at
	FROM employees e
	JOIN manager_mappings m ON m.employee_id = e.id AND m.ends_at IS NULL
	WHERE m.manager_id = $1 AND e.active = TRUE
	ORDER BY e.first_name, e.last_name`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, managerID); err != nil {
		return nil, fmt.Errorf("list reportees: %w", err)
	}
	return employees, nil
}

// ListActiveByOrganisation returns all active employees of the organisation.
func (r *EmployeeRepository) ListActiveByOrganisation(ctx context.Context, organisationID string) ([]models.Employee, error) {
	const query = `SELECT id, organisation_id, employee_code, first_name, last_name,
		email, designation_id, active, created_at
	FROM employees WHERE organisation_id = $1 AND active = TRUE
	ORDER BY first_name, last_name`
	var employees []models.Employee
	if err := r.db.SelectContext(ctx, &employees, query, organisationID); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}
