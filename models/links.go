package models

// ProjectOrganization verknüpft ein Projekt mit einer beteiligten Einrichtung.
// This relation is the basis of the collaboration graph: two organizations are
// collaborators when they share at least one project_id here.
type ProjectOrganization struct {
	ProjectID      string `json:"project_id" gorm:"primaryKey;size:32"`
	OrganizationID string `json:"organization_id" gorm:"primaryKey;size:32"`

	Role       string `json:"role" gorm:"index"` // coordinator, participant, ...
	OrderIndex int    `json:"order_index"`

	EcContribution    float64 `json:"ec_contribution"`
	NetEcContribution float64 `json:"net_ec_contribution"`
	TotalCost         float64 `json:"total_cost"`

	Active             bool `json:"active" gorm:"default:true"`
	EndOfParticipation bool `json:"end_of_participation" gorm:"default:false"`
}

func (ProjectOrganization) TableName() string { return "project_organizations" }

// ProjectTopic verknüpft Projekte mit Topics (n:m).
type ProjectTopic struct {
	ProjectID string `json:"project_id" gorm:"primaryKey;size:32"`
	TopicCode string `json:"topic_code" gorm:"primaryKey;size:128"`
}

func (ProjectTopic) TableName() string { return "project_topics" }

// ProjectLegalBasis verknüpft Projekte mit Rechtsgrundlagen (n:m).
type ProjectLegalBasis struct {
	ProjectID      string `json:"project_id" gorm:"primaryKey;size:32"`
	LegalBasisCode string `json:"legal_basis_code" gorm:"primaryKey;size:64"`
}

func (ProjectLegalBasis) TableName() string { return "project_legal_basis" }

// ProjectSciVoc verknüpft Projekte mit euroSciVoc-Codes (n:m).
type ProjectSciVoc struct {
	ProjectID  string `json:"project_id" gorm:"primaryKey;size:32"`
	SciVocCode string `json:"sci_voc_code" gorm:"primaryKey;size:64"`
}

func (ProjectSciVoc) TableName() string { return "project_sci_voc" }
