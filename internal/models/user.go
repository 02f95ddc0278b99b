package models

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleStudent        Role = "Student"
	RoleContentCreator Role = "ContentCreator"
	RoleAdmin          Role = "Admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleContentCreator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"not null" json:"-"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	PhoneNumber      string     `json:"phoneNumber,omitempty"`
	Role             Role       `gorm:"type:varchar(32);not null" json:"role"`
	IsActive         bool       `json:"isActive"`
	SuspendedUntil   *time.Time `json:"suspendedUntil,omitempty"`
	SuspensionReason string     `json:"suspensionReason,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsSuspended reports whether the account is suspended at now.
func (u *User) IsSuspended(now time.Time) bool {
	return u.SuspendedUntil != nil && now.Before(*u.SuspendedUntil)
}

// UserSession backs a refresh token issued at login.
type UserSession struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index;not null" json:"userId"`
	SessionID    string     `gorm:"uniqueIndex;not null" json:"sessionId"`
	RefreshToken string     `gorm:"uniqueIndex;not null" json:"-"`
	LoginTime    time.Time  `json:"loginTime"`
	ExpiresAt    time.Time  `gorm:"index" json:"expiresAt"`
	LogoutTime   *time.Time `json:"logoutTime,omitempty"`
	IPAddress    string     `json:"ipAddress"`
	UserAgent    string     `json:"userAgent"`
	IsActive     bool       `json:"isActive"`
}

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is a purchase of a learning path.
type Order struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index" json:"userId"`
	LearningPathID uint      `gorm:"index" json:"learningPathId"`
	TotalAmount    int       `json:"totalAmount"`
	CreatedAt      time.Time `json:"createdAt"`
}
