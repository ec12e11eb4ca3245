package services

import (
	"context"
	"errors"
	"fmt"
	"ixadmin/internal/models"

	"gorm.io/gorm"
)

type CreateContinentRequest struct {
	ID          string `json:"id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsActive    *bool  `json:"isActive"`
}

type ContinentPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"isActive"`
}

type ContinentService struct {
	db *gorm.DB
}

func NewContinentService(db *gorm.DB) *ContinentService {
	return &ContinentService{db: db}
}

// List orders by display order then name. A nil isActive returns all.
func (s *ContinentService) List(ctx context.Context, isActive *bool) ([]models.Continent, error) {
	q := s.db.WithContext(ctx).Order(orderColumn).Order("name")
	if isActive != nil {
		q = q.Where("is_active = ?", *isActive)
	}
	continents := []models.Continent{}
	if err := q.Find(&continents).Error; err != nil {
		return nil, fmt.Errorf("failed to list continents: %w", err)
	}
	return continents, nil
}

func (s *ContinentService) Get(ctx context.Context, id string) (*models.Continent, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *ContinentService) load(tx *gorm.DB, id string) (*models.Continent, error) {
	var c models.Continent
	err := tx.First(&c, "id = ?", normalizeKey(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Continent not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load continent: %w", err)
	}
	return &c, nil
}

func (s *ContinentService) Create(ctx context.Context, req CreateContinentRequest) (*models.Continent, error) {
	c := &models.Continent{
		ID:          normalizeKey(req.ID),
		Name:        req.Name,
		Description: req.Description,
		Order:       req.Order,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Continent{}).Where("id = ?", c.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("Continent with this ID already exists")
		}
		return tx.Create(c).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, conflict("Continent with this ID already exists")
	}
	if err != nil {
		return nil, wrap(err, "failed to create continent")
	}
	return c, nil
}

func (s *ContinentService) Update(ctx context.Context, id string, patch ContinentPatch) (*models.Continent, error) {
	var c *models.Continent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = s.load(tx, id); err != nil {
			return err
		}
		set(&c.Name, patch.Name)
		set(&c.Description, patch.Description)
		set(&c.Order, patch.Order)
		set(&c.IsActive, patch.IsActive)
		return tx.Save(c).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update continent")
	}
	return c, nil
}

func (s *ContinentService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", normalizeKey(id)).Delete(&models.Continent{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete continent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Continent not found")
	}
	return nil
}
