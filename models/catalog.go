package models

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type University struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Country   string    `gorm:"type:varchar(100)" json:"country"`
	Website   string    `gorm:"type:varchar(255)" json:"website"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Programs []Program `gorm:"foreignKey:UniversityID" json:"programs,omitempty"`
}

// Program is catalog data. It is read exactly once per application, at
// creation time, and its fee, deadline and document requirements are
// snapshotted onto the application row.
type Program struct {
	ID           string `gorm:"type:char(36);primaryKey" json:"id"`
	UniversityID string `gorm:"type:char(36);not null;index" json:"university_id"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string `gorm:"type:varchar(255);index" json:"slug"`
	Degree       string `gorm:"type:varchar(50)" json:"degree"` // bachelor, master, phd

	// ApplicationFee is in minor units.
	ApplicationFee      int64          `gorm:"not null" json:"application_fee"`
	FeeCurrency         string         `gorm:"type:varchar(10);default:'INR'" json:"fee_currency"`
	ApplicationDeadline *time.Time     `json:"application_deadline"`
	DocumentsRequired   pq.StringArray `gorm:"type:text[]" json:"documents_required"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	return nil
}
