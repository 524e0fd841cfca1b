package models

import (
	"time"
)

const (
	RoleClient   = "CLIENT"
	RoleEngineer = "ENGINEER"
	RoleAdmin    = "ADMIN"
)

const (
	ContestOpen   = "OPEN"
	ContestReview = "REVIEW"
	ContestClosed = "CLOSED"
)

const (
	PracticeOpen       = "OPEN"
	PracticeInProgress = "IN_PROGRESS"
	PracticeDone       = "DONE"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Name         string    `gorm:"not null"                 json:"name"`
	Role         string    `gorm:"not null"                 json:"role"`
	Avatar       string    `json:"avatar"`
	Bio          string    `json:"bio"`
	Portfolio    string    `json:"portfolio"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
}

type Contest struct {
	ID          uint       `gorm:"primaryKey"                  json:"id"`
	OwnerID     uint       `gorm:"index;not null"              json:"owner_id"`
	Title       string     `gorm:"not null"                    json:"title"`
	Description string     `json:"description"`
	Budget      float64    `json:"budget"`
	Status      string     `gorm:"not null;default:OPEN"       json:"status"`
	Deadline    *time.Time `json:"deadline"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Proposal struct {
	ID          uint      `gorm:"primaryKey"                            json:"id"`
	ContestID   uint      `gorm:"not null;uniqueIndex:idx_contest_author" json:"contest_id"`
	AuthorID    uint      `gorm:"not null;uniqueIndex:idx_contest_author" json:"author_id"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

type PracticeRequest struct {
	ID          uint      `gorm:"primaryKey"            json:"id"`
	ClientID    uint      `gorm:"index;not null"        json:"client_id"`
	Title       string    `gorm:"not null"              json:"title"`
	Description string    `json:"description"`
	Region      string    `json:"region"`
	Status      string    `gorm:"not null;default:OPEN" json:"status"`
	EngineerID  *uint     `gorm:"index"                 json:"engineer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type FileObject struct {
	ID         uint      `gorm:"primaryKey"     json:"id"`
	OwnerID    uint      `gorm:"index;not null" json:"owner_id"`
	Name       string    `gorm:"not null"       json:"name"`
	URL        string    `gorm:"not null"       json:"url"`
	Size       int64     `json:"size"`
	ContestID  *uint     `json:"contest_id"`
	ProposalID *uint     `json:"proposal_id"`
	PracticeID *uint     `json:"practice_id"`
	CreatedAt  time.Time `json:"created_at"`
}
