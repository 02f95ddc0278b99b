package models

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

type EnrollmentStatus string

const (
	StatusNotStarted EnrollmentStatus = "NotStarted"
	StatusInProgress EnrollmentStatus = "InProgress"
	StatusCompleted  EnrollmentStatus = "Completed"
)

// Activity types recorded in UserActivity.ActivityType.
const (
	ActivityContentCompleted    = "ContentCompleted"
	ActivityAssessmentCompleted = "AssessmentCompleted"
	ActivityEnrolled            = "Enrolled"
	ActivityLogin               = "Login"
)

type LearningPath struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description"`
	ImageURL           string     `json:"imageUrl,omitempty"`
	Category           string     `gorm:"index" json:"category"`
	Difficulty         Difficulty `gorm:"type:varchar(32)" json:"difficulty"`
	EstimatedHours     int        `json:"estimatedHours"`
	Prerequisites      StringList `json:"prerequisites"`
	LearningObjectives StringList `json:"learningObjectives"`
	Tags               StringList `json:"tags"`
	Price              int        `json:"price"`
	IsPublished        bool       `json:"isPublished"`
	IsActive           bool       `json:"isActive"`
	DisplayOrder       int        `json:"displayOrder"`
	CreatorID          uint       `gorm:"index" json:"creatorId"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type Content struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	LearningPathID  uint      `gorm:"index;not null" json:"learningPathId"`
	Title           string    `gorm:"not null" json:"title"`
	ContentType     string    `json:"contentType"`
	Body            string    `json:"body,omitempty"`
	URL             string    `json:"url,omitempty"`
	OrderIndex      int       `json:"orderIndex"`
	DurationMinutes int       `json:"durationMinutes"`
	IsPublished     bool      `json:"isPublished"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserLearningPath is an enrollment. One row per (user, learning path).
type UserLearningPath struct {
	ID                 uint             `gorm:"primaryKey" json:"id"`
	UserID             uint             `gorm:"uniqueIndex:idx_enrollment;not null" json:"userId"`
	LearningPathID     uint             `gorm:"uniqueIndex:idx_enrollment;not null" json:"learningPathId"`
	AmountPaid         int              `json:"amountPaid"`
	SessionCount       int              `json:"sessionCount"`
	TotalMinutesSpent  int              `json:"totalMinutesSpent"`
	EnrolledAt         time.Time        `json:"enrolledAt"`
	LastAccessed       time.Time        `json:"lastAccessed"`
	CompletedAt        *time.Time       `json:"completedAt,omitempty"`
	Status             EnrollmentStatus `gorm:"type:varchar(32)" json:"status"`
	ProgressPercentage int              `json:"progressPercentage"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// UserProgress tracks one user's progress on one content item.
type UserProgress struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"index;not null" json:"userId"`
	ContentID          uint       `gorm:"index;not null" json:"contentId"`
	LearningPathID     uint       `gorm:"index" json:"learningPathId"`
	IsCompleted        bool       `json:"isCompleted"`
	TimeSpentMinutes   int        `json:"timeSpentMinutes"`
	ProgressPercentage int        `json:"progressPercentage"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type UserActivity struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"userId"`
	ActivityType string         `gorm:"index" json:"activityType"`
	Description  string         `json:"description"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	Timestamp    time.Time      `gorm:"index" json:"timestamp"`
}
