package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 10
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BootcampID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_bootcamp_user,priority:1" json:"bootcamp_id"`
	Bootcamp   *Bootcamp `gorm:"foreignKey:BootcampID;references:ID" json:"bootcamp,omitempty"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_review_bootcamp_user,priority:2" json:"user_id"`
	Title      string    `gorm:"column:title;not null;size:100" json:"title"`
	Text       string    `gorm:"column:text;not null" json:"text"`
	Rating     int       `gorm:"column:rating;not null" json:"rating"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
