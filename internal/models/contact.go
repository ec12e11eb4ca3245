package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Departments that may publish contact details.
var Departments = []string{"sales", "services", "support"}

// ContactInfo holds the phone and email a department publishes for one
// location. (department, locationId) is unique.
type ContactInfo struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	Department string    `json:"department" gorm:"size:16;not null;uniqueIndex:idx_contact_department_location"`
	LocationID string    `json:"locationId" gorm:"size:64;not null;uniqueIndex:idx_contact_department_location"`
	Phone      string    `json:"phone" gorm:"not null"`
	Email      string    `json:"email" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *ContactInfo) BeforeSave(tx *gorm.DB) error {
	c.Department = strings.ToLower(strings.TrimSpace(c.Department))
	c.LocationID = strings.ToLower(strings.TrimSpace(c.LocationID))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return nil
}
