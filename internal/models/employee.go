package models

import "time"

// ManagerType distinguishes the two manager slots of an employee.
type ManagerType int

const (
	ManagerTypeFirst  ManagerType = 1
	ManagerTypeSecond ManagerType = 2
)

// Employee is the minimal employee projection the review core depends on.
type Employee struct {
	ID             string    `db:"id" json:"id"`
	OrganisationID string    `db:"organisation_id" json:"organisation_id"`
	EmployeeCode   string    `db:"employee_code" json:"employee_code"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	DesignationID  string    `db:"designation_id" json:"designation_id"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ManagerMapping assigns a manager to an employee for a period of time. At
// most one mapping per (employee, type) is current at any instant; a NULL
// EndsAt marks the current mapping.
type ManagerMapping struct {
	ID          string      `db:"id" json:"id"`
	EmployeeID  string      `db:"employee_id" json:"employee_id"`
	ManagerID   string      `db:"manager_id" json:"manager_id"`
	ManagerType ManagerType `db:"manager_type" json:"manager_type"`
	StartsAt    time.Time   `db:"starts_at" json:"starts_at"`
	EndsAt      *time.Time  `db:"ends_at" json:"ends_at,omitempty"`
}
