package models

import (
	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeStudio    PropertyType = "studio"
	PropertyTypeOther     PropertyType = "other"
)

type Property struct {
	gorm.Model
	OwnerID      uint            `json:"ownerId" gorm:"not null;index"`
	Owner        User            `json:"owner"`
	Title        string          `json:"title" gorm:"not null"`
	Description  string          `json:"description" gorm:"type:text"`
	City         string          `json:"city" gorm:"not null;index"`
	District     string          `json:"district"`
	Price        float64         `json:"price" gorm:"not null;index"`
	Rooms        int             `json:"rooms" gorm:"not null;index"`
	PropertyType PropertyType    `json:"propertyType" gorm:"not null;default:'apartment'"`
	IsActive     bool            `json:"isActive" gorm:"not null;default:true;index"`
	ViewsCount   uint            `json:"viewsCount" gorm:"not null;default:0"`
	ReviewsCount uint            `json:"reviewsCount" gorm:"not null;default:0"`
	Rating       float64         `json:"rating" gorm:"not null;default:0"`
	Images       []PropertyImage `json:"images"`
}

type PropertyImage struct {
	gorm.Model
	PropertyID uint   `json:"propertyId" gorm:"not null;index"`
	ImageURL   string `json:"imageUrl" gorm:"not null"`
	Alt        string `json:"alt"`
}
