package models

import (
	"time"

	"github.com/lib/pq"
)

type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusAccepted    ApplicationStatus = "accepted"
	StatusRejected    ApplicationStatus = "rejected"
)

type IntakeSeason string

const (
	SeasonFall   IntakeSeason = "fall"
	SeasonSpring IntakeSeason = "spring"
)

// Progress holds the four gates an application must pass before submission.
// In the student-facing flow a gate only ever flips false -> true; resetting
// one requires an explicit admin override.
type Progress struct {
	PersonalInfo bool `gorm:"default:false" json:"personal_info"`
	AcademicInfo bool `gorm:"default:false" json:"academic_info"`
	Documents    bool `gorm:"default:false" json:"documents"`
	Payment      bool `gorm:"default:false" json:"payment"`
}

// Complete reports whether every gate is satisfied.
func (p Progress) Complete() bool {
	return p.PersonalInfo && p.AcademicInfo && p.Documents && p.Payment
}

// Union merges set flags into p without ever unsetting one.
func (p Progress) Union(set Progress) Progress {
	return Progress{
		PersonalInfo: p.PersonalInfo || set.PersonalInfo,
		AcademicInfo: p.AcademicInfo || set.AcademicInfo,
		Documents:    p.Documents || set.Documents,
		Payment:      p.Payment || set.Payment,
	}
}

type Application struct {
	ID           string            `gorm:"type:char(36);primaryKey" json:"id"`
	UserID       string            `gorm:"type:char(36);not null;index" json:"user_id"`
	UniversityID string            `gorm:"type:char(36);not null;index" json:"university_id"`
	ProgramID    string            `gorm:"type:char(36);not null;index" json:"program_id"`
	Status       ApplicationStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Progress     Progress          `gorm:"embedded;embeddedPrefix:progress_" json:"progress"`

	// Mirror of the latest payment outcome for fast reads.
	PaymentStatus string `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`

	// Snapshotted from the program at creation time. Later catalog edits
	// must not retroactively change an existing application.
	ApplicationFee    int64          `gorm:"not null" json:"application_fee"`
	FeeCurrency       string         `gorm:"type:varchar(10);default:'INR'" json:"fee_currency"`
	Deadline          *time.Time     `json:"deadline"`
	RequiredDocuments pq.StringArray `gorm:"type:text[]" json:"required_documents"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	// Optimistic concurrency: every progress/status write is conditional
	// on the version it read.
	Version int64 `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Intakes []ApplicationIntake `gorm:"foreignKey:ApplicationID" json:"intakes"`
}

// ApplicationIntake is one (season, year) enrollment cycle the application
// targets. The unique index rejects a second application for the same cycle
// at the database level; the service layer prechecks it for a friendlier
// error.
type ApplicationIntake struct {
	ID            uint         `gorm:"primaryKey;autoIncrement" json:"-"`
	ApplicationID string       `gorm:"type:char(36);not null;index" json:"-"`
	UserID        string       `gorm:"type:char(36);not null;uniqueIndex:ux_intake,priority:1" json:"-"`
	UniversityID  string       `gorm:"type:char(36);not null;uniqueIndex:ux_intake,priority:2" json:"-"`
	ProgramID     string       `gorm:"type:char(36);not null;uniqueIndex:ux_intake,priority:3" json:"-"`
	Season        IntakeSeason `gorm:"type:varchar(10);not null;uniqueIndex:ux_intake,priority:4" json:"season"`
	Year          int          `gorm:"not null;uniqueIndex:ux_intake,priority:5" json:"year"`
}

func (ApplicationIntake) TableName() string { return "application_intakes" }
