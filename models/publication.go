package models

import "time"

// Publication ist eine wissenschaftliche Veröffentlichung aus einem Projekt.
// Owned by exactly one project.
type Publication struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID string `json:"project_id" gorm:"index;size:32;not null"`

	Title          string `json:"title"`
	Authors        string `json:"authors,omitempty" gorm:"type:text"`
	DOI            string `json:"doi,omitempty" gorm:"column:doi;index"`
	IsPublishedAs  string `json:"is_published_as,omitempty" gorm:"index"` // journal article, conference proceeding, ...
	JournalTitle   string `json:"journal_title,omitempty"`
	JournalNumber  string `json:"journal_number,omitempty"`
	PublishedYear  int    `json:"published_year,omitempty" gorm:"index"`
	PublishedPages string `json:"published_pages,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Publication) TableName() string {
	return "publications"
}
