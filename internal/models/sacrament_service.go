package models

import "time"

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

type SacramentService struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ChurchID uint   `gorm:"index" json:"church_id"`
	Church   Church `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name              string  `gorm:"size:120;not null" json:"name"`
	Description       string  `gorm:"size:255" json:"description"`
	Fee               float64 `json:"fee"`
	IsMass            bool    `gorm:"default:false" json:"is_mass"`
	IsMultipleService bool    `gorm:"default:false" json:"is_multiple_service"`

	DiscountType  string  `gorm:"size:20" json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`

	Active bool `gorm:"default:true" json:"active"`

	Variants []ServiceVariant `gorm:"foreignKey:ServiceID" json:"variants,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ServiceVariant is a priced sub-offering of a multiple service
// (e.g. private vs. communal baptism).
type ServiceVariant struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ServiceID uint    `gorm:"index" json:"service_id"`
	Name      string  `gorm:"size:120;not null" json:"name"`
	Fee       float64 `json:"fee"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
