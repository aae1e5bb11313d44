package models

import (
	"time"

	"gorm.io/datatypes"
)

// Project ist ein gefördertes Forschungsprojekt aus den CORDIS-Extrakten.
// The derived columns (durations, per-year money, classification lists) are
// recomputed on every load from the raw columns and the sci-voc tag set.
type Project struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Acronym string `json:"acronym" gorm:"index"`
	Title   string `json:"title"`
	Status  string `json:"status" gorm:"index"`

	StartDate       *time.Time `json:"start_date,omitempty" gorm:"index"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	EcSignatureDate *time.Time `json:"ec_signature_date,omitempty"`

	TotalCost         float64 `json:"total_cost"`
	EcMaxContribution float64 `json:"ec_max_contribution"`

	FundingScheme      string `json:"funding_scheme" gorm:"index"`
	FrameworkProgramme string `json:"framework_programme" gorm:"index"`
	MasterCall         string `json:"master_call,omitempty"`
	SubCall            string `json:"sub_call,omitempty"`
	Nature             string `json:"nature,omitempty"`
	Objective          string `json:"objective,omitempty" gorm:"type:text"`
	RCN                string `json:"rcn,omitempty" gorm:"column:rcn"`
	GrantDOI           string `json:"grant_doi,omitempty" gorm:"column:grant_doi"`

	// Derived temporal features (calendar difference of start/end)
	DurationDays   int `json:"duration_days"`
	DurationMonths int `json:"duration_months"`
	DurationYears  int `json:"duration_years"`

	// Derived people/institution features
	NInstitutions   int    `json:"n_institutions"`
	CoordinatorName string `json:"coordinator_name,omitempty"`

	// Derived financial features (zero when duration unknown)
	EcContributionPerYear float64 `json:"ec_contribution_per_year"`
	TotalCostPerYear      float64 `json:"total_cost_per_year"`

	// Derived classification lists from the euroSciVoc paths of the project.
	// Source of truth is the project_sci_voc relation; these JSONB arrays are a
	// denormalized copy for list-valued display ("other" when untagged).
	FieldClasses datatypes.JSON `json:"field_classes,omitempty" gorm:"type:jsonb"`
	Fields       datatypes.JSON `json:"fields,omitempty" gorm:"type:jsonb"`
	SubFields    datatypes.JSON `json:"sub_fields,omitempty" gorm:"type:jsonb"`
	Niches       datatypes.JSON `json:"niches,omitempty" gorm:"type:jsonb"`
}

// TableName gibt explizit den Tabellennamen an.
func (Project) TableName() string {
	return "projects"
}
