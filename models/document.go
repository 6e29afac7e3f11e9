package models

import "time"

// StudentDocument is uploaded-file metadata only. Binary storage and content
// validation live with the object-store collaborator; this core only needs
// the document type to compute requirement coverage.
type StudentDocument struct {
	ID            string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID        string    `gorm:"type:char(36);not null;index" json:"user_id"`
	ApplicationID string    `gorm:"type:char(36);index" json:"application_id,omitempty"`
	Type          string    `gorm:"type:varchar(50);not null" json:"type"` // transcript, sop, lor, ...
	FileName      string    `gorm:"type:varchar(255)" json:"file_name"`
	StorageKey    string    `gorm:"type:text" json:"-"`
	UploadedAt    time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
