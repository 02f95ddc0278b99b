package models

import "time"

type FileUpload struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FileName         string    `gorm:"uniqueIndex;not null" json:"fileName"` // storage key
	OriginalFileName string    `json:"originalFileName"`
	FileType         string    `gorm:"index" json:"fileType"`
	ContentType      string    `json:"contentType"`
	FileSize         int64     `json:"fileSize"`
	Description      string    `json:"description"`
	IsPublic         bool      `json:"isPublic"`
	UploadedBy       uint      `gorm:"index;not null" json:"uploadedBy"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

type FileShare struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FileUploadID     uint      `gorm:"index;not null" json:"fileUploadId"`
	SharedWithUserID uint      `gorm:"index;not null" json:"sharedWithUserId"`
	SharedBy         uint      `json:"sharedBy"`
	AccessLevel      string    `json:"accessLevel"`
	SharedAt         time.Time `json:"sharedAt"`
}
