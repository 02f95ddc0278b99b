package models

import "time"

type Assessment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Title          string    `gorm:"not null" json:"title"`
	Description    string    `json:"description"`
	AssessmentType string    `gorm:"index" json:"assessmentType"`
	TimeLimit      int       `json:"timeLimit"` // minutes
	PassingScore   int       `json:"passingScore"`
	MaxScore       int       `json:"maxScore"` // sum of question points
	LearningPathID *uint     `gorm:"index" json:"learningPathId,omitempty"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Question struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	AssessmentID  uint       `gorm:"index;not null" json:"assessmentId"`
	QuestionText  string     `gorm:"not null" json:"questionText"`
	QuestionType  string     `json:"questionType"`
	Options       StringList `json:"options"`
	CorrectAnswer string     `json:"correctAnswer"`
	Explanation   string     `json:"explanation"`
	Points        int        `json:"points"`
	OrderIndex    int        `json:"orderIndex"`
}

// AssessmentResult is one attempt. CompletedAt stays nil until the attempt is submitted.
type AssessmentResult struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	AssessmentID     uint       `gorm:"index;not null" json:"assessmentId"`
	UserID           uint       `gorm:"index;not null" json:"userId"`
	Score            int        `json:"score"`
	MaxScore         int        `json:"maxScore"`
	TotalQuestions   int        `json:"totalQuestions"`
	CorrectAnswers   int        `json:"correctAnswers"`
	IsPassed         bool       `json:"isPassed"`
	TimeSpentMinutes int        `json:"timeSpentMinutes"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	Feedback         string     `json:"feedback"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

type UserAnswer struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	AssessmentResultID uint      `gorm:"index;not null" json:"assessmentResultId"`
	QuestionID         uint      `gorm:"index;not null" json:"questionId"`
	UserID             uint      `gorm:"not null" json:"userId"`
	Answer             string    `json:"answer"`
	IsCorrect          bool      `json:"isCorrect"`
	CreatedAt          time.Time `json:"createdAt"`
}
