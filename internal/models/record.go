package models

import (
	"time"

	"gorm.io/gorm"
)

// InterviewRecord is written once when an interview reaches its evaluation.
// Score is nil when the evaluation carried no parseable "X/10".
type InterviewRecord struct {
	gorm.Model
	UserID      string     `gorm:"not null;index;uniqueIndex:idx_user_completed" json:"userId"`
	UserEmail   string     `json:"userEmail"`
	Mode        string     `gorm:"not null" json:"mode"`
	Level       string     `gorm:"not null" json:"level"`
	Score       *int       `json:"score"`
	CompletedAt time.Time  `gorm:"not null;uniqueIndex:idx_user_completed" json:"completedAt"`
	Exported    bool       `gorm:"not null;default:false;index" json:"-"`
	ExportedAt  *time.Time `json:"-"`
}
