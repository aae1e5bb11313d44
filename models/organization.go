package models

import "time"

// Organization ist eine an Projekten beteiligte Einrichtung (Forschung, öffentlich, privat, Non-Profit).
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name      string `json:"name" gorm:"index"`
	ShortName string `json:"short_name,omitempty"`
	VatNumber string `json:"vat_number,omitempty"`

	SME          bool   `json:"sme" gorm:"default:false"`
	ActivityType string `json:"activity_type" gorm:"index"` // HES, REC, PUB, PRC, OTH

	Street   string `json:"street,omitempty"`
	PostCode string `json:"post_code,omitempty"`
	City     string `json:"city,omitempty"`
	Country  string `json:"country" gorm:"index;size:2"`
	NutsCode string `json:"nuts_code,omitempty" gorm:"index"`

	// "lat,lon" wie im Extrakt geliefert
	Geolocation string `json:"geolocation,omitempty"`

	OrganizationURL string `json:"organization_url,omitempty"`
	ContactForm     string `json:"contact_form,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Organization) TableName() string {
	return "organizations"
}
