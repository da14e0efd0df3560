package entity

import "time"

// CompanyProfileID is the key of the single company profile row.
const CompanyProfileID = "main"

// CompanyProfile is the shop header printed on receipts
type CompanyProfile struct {
	ID        string    `gorm:"size:32;primaryKey" json:"-"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"size:50" json:"phone"`
	Logo      *string   `gorm:"size:255" json:"logo,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the CompanyProfile model
func (CompanyProfile) TableName() string {
	return "company_profile"
}

// DefaultCompanyProfile is used until the shop saves its own details.
func DefaultCompanyProfile() *CompanyProfile {
	return &CompanyProfile{
		ID:   CompanyProfileID,
		Name: "Ma Boutique",
	}
}
