package models

// Topic ist ein Ausschreibungs-Topic aus dem topics-Extrakt.
type Topic struct {
	Code  string `json:"code" gorm:"primaryKey;size:128"`
	Title string `json:"title"`
}

func (Topic) TableName() string { return "topics" }

// LegalBasis ist die Rechtsgrundlage einer Förderung (z.B. "HORIZON.1.2").
type LegalBasis struct {
	Code                string `json:"code" gorm:"primaryKey;size:64"`
	Title               string `json:"title"`
	UniqueProgrammePart string `json:"unique_programme_part,omitempty"`
}

func (LegalBasis) TableName() string { return "legal_basis" }

// SciVocCode ist ein Eintrag des euroSciVoc-Klassifikationsbaums.
// Path is the full hierarchical path, e.g.
// "/natural sciences/physical sciences/astronomy/planetary science".
type SciVocCode struct {
	Code        string `json:"code" gorm:"primaryKey;size:64"`
	Path        string `json:"path" gorm:"index"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty" gorm:"type:text"`
}

func (SciVocCode) TableName() string { return "sci_voc" }
