package models

import "gorm.io/gorm"

// Review of a property by a tenant. One review per tenant per property;
// the handler only accepts a review once the author's stay has started.
type Review struct {
	gorm.Model
	PropertyID uint     `json:"propertyId" gorm:"not null;index;uniqueIndex:idx_reviews_property_author"`
	Property   Property `json:"-"`
	AuthorID   uint     `json:"authorId" gorm:"not null;index;uniqueIndex:idx_reviews_property_author"`
	Author     User     `json:"author"`
	Rating     int      `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Text       string   `json:"text" gorm:"type:text"`
}
