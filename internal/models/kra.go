package models

import "time"

// KRA is a Key Result Area: a competency category employees are reviewed
// against. Each KRA carries one or more KPIs that describe concrete criteria.
type KRA struct {
	ID             string    `db:"id" json:"id"`
	OrganisationID string    `db:"organisation_id" json:"organisation_id"`
	Name           string    `db:"name" json:"name"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// KPI is a Key Performance Indicator under a KRA.
type KPI struct {
	ID            string    `db:"id" json:"id"`
	KRAID         string    `db:"kra_id" json:"kra_id"`
	Title         string    `db:"title" json:"title"`
	Description   string    `db:"description" json:"description"`
	Active        bool      `db:"active" json:"active"`
	DesignationID string    `db:"designation_id" json:"designation_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// KRAWeightage assigns a KRA its percentage weight within a review cycle.
type KRAWeightage struct {
	ID            string `db:"id" json:"id"`
	ReviewCycleID string `db:"review_cycle_id" json:"review_cycle_id"`
	KRAID         string `db:"kra_id" json:"kra_id"`
	KRAName       string `db:"kra_name" json:"kra_name"`
	Weightage     int    `db:"weightage" json:"weightage"`
}
