package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPhoto = "no-photo.jpg"

// Location is the geocoded form of Bootcamp.Address.
type Location struct {
	Longitude        *float64 `gorm:"column:longitude;index" json:"longitude,omitempty"`
	Latitude         *float64 `gorm:"column:latitude;index" json:"latitude,omitempty"`
	FormattedAddress string   `gorm:"column:formatted_address" json:"formatted_address,omitempty"`
	Street           string   `gorm:"column:street" json:"street,omitempty"`
	City             string   `gorm:"column:city" json:"city,omitempty"`
	State            string   `gorm:"column:state" json:"state,omitempty"`
	Zipcode          string   `gorm:"column:zipcode" json:"zipcode,omitempty"`
	Country          string   `gorm:"column:country" json:"country,omitempty"`
}

func (l Location) HasCoordinates() bool {
	return l.Longitude != nil && l.Latitude != nil
}

type Bootcamp struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string                      `gorm:"column:name;uniqueIndex;not null;size:50" json:"name"`
	Slug          string                      `gorm:"column:slug;index" json:"slug"`
	Description   string                      `gorm:"column:description;not null;size:500" json:"description"`
	Website       string                      `gorm:"column:website" json:"website,omitempty"`
	Phone         string                      `gorm:"column:phone;size:20" json:"phone,omitempty"`
	Email         string                      `gorm:"column:email" json:"email,omitempty"`
	Address       string                      `gorm:"column:address;not null" json:"address"`
	Location      Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Careers       datatypes.JSONSlice[string] `gorm:"column:careers" json:"careers"`
	AverageRating *float64                    `gorm:"column:average_rating" json:"average_rating"`
	AverageCost   *float64                    `gorm:"column:average_cost" json:"average_cost"`
	Photo         string                      `gorm:"column:photo;not null;default:no-photo.jpg" json:"photo"`
	Housing       bool                        `gorm:"column:housing;not null;default:false" json:"housing"`
	JobAssistance bool                        `gorm:"column:job_assistance;not null;default:false" json:"job_assistance"`
	JobGuarantee  bool                        `gorm:"column:job_guarantee;not null;default:false" json:"job_guarantee"`
	AcceptGi      bool                        `gorm:"column:accept_gi;not null;default:false" json:"accept_gi"`
	CreatedAt     time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null" json:"updated_at"`

	Courses []*Course `gorm:"foreignKey:BootcampID" json:"courses,omitempty"`
}

func (Bootcamp) TableName() string { return "bootcamps" }

func (b *Bootcamp) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.Photo == "" {
		b.Photo = DefaultPhoto
	}
	return nil
}
