package models

import "gorm.io/gorm"

// SearchQuery is a logged catalog search. Rows are written best-effort;
// a failed insert never fails the request that triggered it.
type SearchQuery struct {
	gorm.Model
	UserID     *uint  `json:"userId" gorm:"index"`
	SessionKey string `json:"sessionKey" gorm:"size:40;index"`
	IP         string `json:"ip" gorm:"size:45"`
	Query      string `json:"query" gorm:"size:255;not null;index"`
	Path       string `json:"path" gorm:"size:255"`
}

// ViewEvent is a logged property detail view, deduplicated per session
// through Redis before it reaches the database.
type ViewEvent struct {
	gorm.Model
	PropertyID uint   `json:"propertyId" gorm:"not null;index"`
	UserID     *uint  `json:"userId" gorm:"index"`
	SessionKey string `json:"sessionKey" gorm:"size:40;index"`
	IP         string `json:"ip" gorm:"size:45"`
	Path       string `json:"path" gorm:"size:255"`
	UserAgent  string `json:"userAgent" gorm:"size:500"`
	Referer    string `json:"referer" gorm:"size:1000"`
}
