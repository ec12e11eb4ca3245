package services

import (
	"context"
	"errors"
	"fmt"
	"ixadmin/internal/models"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ContactFilter struct {
	Department string `form:"department"`
	LocationID string `form:"locationId"`
}

// ContactRequest is the body of PUT /api/contacts/:department/:locationId.
type ContactRequest struct {
	Phone string `json:"phone" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) List(ctx context.Context, f ContactFilter) ([]models.ContactInfo, error) {
	q := s.db.WithContext(ctx).Order("department").Order("location_id")
	if f.Department != "" {
		q = q.Where("department = ?", normalizeKey(f.Department))
	}
	if f.LocationID != "" {
		q = q.Where("location_id = ?", normalizeKey(f.LocationID))
	}
	contacts := []models.ContactInfo{}
	if err := q.Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactService) Get(ctx context.Context, department, locationID string) (*models.ContactInfo, error) {
	var c models.ContactInfo
	err := s.db.WithContext(ctx).
		Where("department = ? AND location_id = ?", normalizeKey(department), normalizeKey(locationID)).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Contact not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact: %w", err)
	}
	return &c, nil
}

// Upsert creates or replaces the contact for (department, locationId).
func (s *ContactService) Upsert(ctx context.Context, department, locationID string, req ContactRequest) (*models.ContactInfo, error) {
	department = normalizeKey(department)
	if !slices.Contains(models.Departments, department) {
		return nil, invalid("Department must be one of: sales, services, support")
	}
	if normalizeKey(locationID) == "" {
		return nil, invalid("Location ID is required")
	}

	contact := &models.ContactInfo{
		Department: department,
		LocationID: locationID,
		Phone:      req.Phone,
		Email:      req.Email,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "department"}, {Name: "location_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"phone": contact.Phone, "email": normalizeKey(contact.Email), "updated_at": time.Now().UTC()}),
	}).Create(contact).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save contact: %w", err)
	}
	return s.Get(ctx, department, locationID)
}

func (s *ContactService) Delete(ctx context.Context, department, locationID string) error {
	res := s.db.WithContext(ctx).
		Where("department = ? AND location_id = ?", normalizeKey(department), normalizeKey(locationID)).
		Delete(&models.ContactInfo{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Contact not found")
	}
	return nil
}
