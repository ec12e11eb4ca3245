package services

import (
	"context"
	"errors"
	"fmt"
	"ixadmin/internal/models"

	"gorm.io/gorm"
)

// CreateServiceRequest is the body of POST /api/services.
type CreateServiceRequest struct {
	ID          string               `json:"id" binding:"required"`
	Category    string               `json:"category" binding:"required"`
	Tagline     string               `json:"tagline" binding:"required"`
	Description string               `json:"description" binding:"required"`
	Image       string               `json:"image"`
	Items       []models.ServiceItem `json:"items" binding:"omitempty,dive"`
	Order       int                  `json:"order"`
	IsActive    *bool                `json:"isActive"`
}

// ServicePatch carries the mutable service fields.
type ServicePatch struct {
	Category    *string               `json:"category"`
	Tagline     *string               `json:"tagline"`
	Description *string               `json:"description"`
	Image       *string               `json:"image"`
	Items       *[]models.ServiceItem `json:"items" binding:"omitempty,dive"`
	Order       *int                  `json:"order"`
	IsActive    *bool                 `json:"isActive"`
}

// ServiceItemPatch carries the mutable item fields.
type ServiceItemPatch struct {
	Name        *string               `json:"name"`
	Icon        *string               `json:"icon"`
	Description *string               `json:"description"`
	Benefits    *[]string             `json:"benefits"`
	Features    *[]string             `json:"features"`
	Stats       *[]models.ServiceStat `json:"stats" binding:"omitempty,dive"`
	Order       *int                  `json:"order"`
}

// CatalogService manages service categories and their item lists.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// List returns services ordered for display; activeOnly hides disabled ones.
func (s *CatalogService) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	q := s.db.WithContext(ctx).Order(orderColumn).Order("id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	services := []models.Service{}
	if err := q.Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*models.Service, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *CatalogService) load(tx *gorm.DB, id string) (*models.Service, error) {
	var svc models.Service
	err := tx.First(&svc, "id = ?", normalizeKey(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Service not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load service: %w", err)
	}
	return &svc, nil
}

func (s *CatalogService) Create(ctx context.Context, req CreateServiceRequest) (*models.Service, error) {
	svc := &models.Service{
		ID:          normalizeKey(req.ID),
		Category:    req.Category,
		Tagline:     req.Tagline,
		Description: req.Description,
		Image:       req.Image,
		Items:       req.Items,
		Order:       req.Order,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Service{}).Where("id = ?", svc.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("Service with this ID already exists")
		}
		return tx.Create(svc).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, conflict("Service with this ID already exists")
	}
	if err != nil {
		return nil, wrap(err, "failed to create service")
	}
	return svc, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, patch ServicePatch) (*models.Service, error) {
	return s.mutate(ctx, id, func(svc *models.Service) error {
		set(&svc.Category, patch.Category)
		set(&svc.Tagline, patch.Tagline)
		set(&svc.Description, patch.Description)
		set(&svc.Image, patch.Image)
		set(&svc.Items, patch.Items)
		set(&svc.Order, patch.Order)
		set(&svc.IsActive, patch.IsActive)
		return nil
	})
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", normalizeKey(id)).Delete(&models.Service{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete service: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Service not found")
	}
	return nil
}

// AddItem appends an item. Without an explicit order it takes the next
// position.
func (s *CatalogService) AddItem(ctx context.Context, id string, item models.ServiceItem) (*models.Service, error) {
	return s.mutate(ctx, id, func(svc *models.Service) error {
		if item.Order == nil {
			order := len(svc.Items)
			item.Order = &order
		}
		svc.Items = append(svc.Items, item)
		return nil
	})
}

func (s *CatalogService) UpdateItem(ctx context.Context, id string, index int, patch ServiceItemPatch) (*models.Service, error) {
	return s.mutate(ctx, id, func(svc *models.Service) error {
		if index < 0 || index >= len(svc.Items) {
			return notFound("Service item not found")
		}
		item := &svc.Items[index]
		set(&item.Name, patch.Name)
		set(&item.Icon, patch.Icon)
		set(&item.Description, patch.Description)
		set(&item.Benefits, patch.Benefits)
		set(&item.Features, patch.Features)
		set(&item.Stats, patch.Stats)
		if patch.Order != nil {
			item.Order = patch.Order
		}
		return nil
	})
}

func (s *CatalogService) DeleteItem(ctx context.Context, id string, index int) (*models.Service, error) {
	return s.mutate(ctx, id, func(svc *models.Service) error {
		if index < 0 || index >= len(svc.Items) {
			return notFound("Service item not found")
		}
		svc.Items = append(svc.Items[:index], svc.Items[index+1:]...)
		return nil
	})
}

func (s *CatalogService) mutate(ctx context.Context, id string, fn func(*models.Service) error) (*models.Service, error) {
	var svc *models.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if svc, err = s.load(tx, id); err != nil {
			return err
		}
		if err := fn(svc); err != nil {
			return err
		}
		return tx.Save(svc).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update service")
	}
	return svc, nil
}
