package models

import "time"

// Salon and SalonService are owned by the catalog service; this service only
// reads them.
type Salon struct {
	ID       string `gorm:"size:36;primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	OwnerID  string `gorm:"size:36;not null;index" json:"owner_id"`
	Address  string `gorm:"size:255" json:"address"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	Services []SalonService `gorm:"foreignKey:SalonID" json:"services,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SalonService struct {
	ID      string `gorm:"size:36;primaryKey" json:"id"`
	SalonID string `gorm:"size:36;not null;index" json:"salon_id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	DurationMin int    `json:"duration_min"`
	Price       int64  `json:"price"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
