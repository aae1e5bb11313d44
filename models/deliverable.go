package models

import "time"

// Deliverable ist ein Projektergebnis (Report, Datensatz, Demonstrator, ...).
// Owned by exactly one project.
type Deliverable struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID string `json:"project_id" gorm:"index;size:32;not null"`

	Title           string `json:"title"`
	DeliverableType string `json:"deliverable_type" gorm:"index"`
	Description     string `json:"description,omitempty" gorm:"type:text"`
	URL             string `json:"url,omitempty"`
	Collection      string `json:"collection,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Deliverable) TableName() string {
	return "deliverables"
}
