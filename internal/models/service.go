package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type ServiceStat struct {
	Label  string `json:"label" binding:"required"`
	Value  string `json:"value" binding:"required"`
	Period string `json:"period" binding:"required"`
}

// ServiceItem is one offering inside a service category. Items have no key
// of their own and are addressed by their position in the list.
type ServiceItem struct {
	Name        string        `json:"name" binding:"required"`
	Icon        string        `json:"icon"`
	Description string        `json:"description" binding:"required"`
	Benefits    []string      `json:"benefits"`
	Features    []string      `json:"features"`
	Stats       []ServiceStat `json:"stats,omitempty" binding:"omitempty,dive"`
	Order       *int          `json:"order,omitempty"`
}

// Service is a product category shown on the services page.
type Service struct {
	ID          string        `json:"id" gorm:"primaryKey;size:64"`
	Category    string        `json:"category" gorm:"not null"`
	Tagline     string        `json:"tagline" gorm:"not null"`
	Description string        `json:"description" gorm:"not null"`
	Image       string        `json:"image"`
	Items       []ServiceItem `json:"items" gorm:"serializer:json"`
	Order       int           `json:"order" gorm:"index"`
	IsActive    bool          `json:"isActive" gorm:"index"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (s *Service) BeforeSave(tx *gorm.DB) error {
	s.ID = strings.ToLower(strings.TrimSpace(s.ID))
	if s.Items == nil {
		s.Items = []ServiceItem{}
	}
	for i := range s.Items {
		if s.Items[i].Benefits == nil {
			s.Items[i].Benefits = []string{}
		}
		if s.Items[i].Features == nil {
			s.Items[i].Features = []string{}
		}
		if s.Items[i].Order == nil {
			order := i
			s.Items[i].Order = &order
		}
	}
	return nil
}
