package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BootcampID           uuid.UUID `gorm:"type:uuid;not null;index" json:"bootcamp_id"`
	Bootcamp             *Bootcamp `gorm:"foreignKey:BootcampID;references:ID" json:"bootcamp,omitempty"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title                string    `gorm:"column:title;not null" json:"title"`
	Description          string    `gorm:"column:description;not null" json:"description"`
	Weeks                string    `gorm:"column:weeks;not null" json:"weeks"`
	Tuition              float64   `gorm:"column:tuition;not null" json:"tuition"`
	MinimumSkill         string    `gorm:"column:minimum_skill;not null" json:"minimum_skill"`
	ScholarshipAvailable bool      `gorm:"column:scholarship_available;not null;default:false" json:"scholarship_available"`
	CreatedAt            time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
