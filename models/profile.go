package models

import (
	"time"

	"github.com/lib/pq"
)

// StudentProfile is the pre-validated profile this core reads when gating
// application creation. Authentication and profile editing happen upstream;
// the row arrives here already owned by an authenticated user id.
type StudentProfile struct {
	ID               string         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           string         `gorm:"type:char(36);uniqueIndex;not null" json:"user_id"`
	FullName         string         `gorm:"type:varchar(100)" json:"full_name"`
	Email            string         `gorm:"type:varchar(255)" json:"email"`
	Nationality      string         `gorm:"type:varchar(100)" json:"nationality"`
	DateOfBirth      *time.Time     `json:"date_of_birth"`
	Languages        pq.StringArray `gorm:"type:text[]" json:"languages"`
	EducationHistory pq.StringArray `gorm:"type:text[]" json:"education_history"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
