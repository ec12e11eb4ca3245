package services

import (
	"context"
	"errors"
	"fmt"
	"ixadmin/internal/models"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
)

// LocationFilter narrows List. Empty fields match everything.
type LocationFilter struct {
	Status      string `form:"status"`
	Region      string `form:"region"`
	ContinentID string `form:"continentId"`
}

// LocationPatch carries the mutable location fields. Nil fields are left
// unchanged.
type LocationPatch struct {
	Name         *string               `json:"name"`
	Coordinates  *[]float64            `json:"coordinates" binding:"omitempty,len=2"`
	Code         *string               `json:"code"`
	Region       *string               `json:"region"`
	ASNList      *[]models.ASN         `json:"asnList" binding:"omitempty,dive"`
	EnabledSites *[]models.EnabledSite `json:"enabledSites" binding:"omitempty,dive"`
	Status       *string               `json:"status" binding:"omitempty,oneof=current upcoming"`
	Country      *string               `json:"country"`
	ContinentID  *string               `json:"continentId"`
	Latency      *string               `json:"latency"`
	Datacenter   *string               `json:"datacenter"`
	Address      *string               `json:"address"`
	IXName       *string               `json:"ixName"`
	Peers        *int                  `json:"peers"`
	Capacity     *string               `json:"capacity"`
	PortSpeeds   *[]string             `json:"portSpeeds"`
	Protocols    *[]string             `json:"protocols"`
	Features     *[]string             `json:"features"`
	Description  *string               `json:"description"`
	Established  *string               `json:"established"`
	CityImage    *string               `json:"cityImage"`
	Pricing      *[]models.PricingTier `json:"pricing" binding:"omitempty,dive"`
	RouteServers *[]models.RouteServer `json:"routeServers" binding:"omitempty,dive"`
}

func (p LocationPatch) apply(l *models.Location) {
	set(&l.Name, p.Name)
	set(&l.Coordinates, p.Coordinates)
	set(&l.Code, p.Code)
	set(&l.Region, p.Region)
	set(&l.ASNList, p.ASNList)
	set(&l.EnabledSites, p.EnabledSites)
	set(&l.Status, p.Status)
	set(&l.Country, p.Country)
	set(&l.ContinentID, p.ContinentID)
	set(&l.Latency, p.Latency)
	set(&l.Datacenter, p.Datacenter)
	set(&l.Address, p.Address)
	set(&l.IXName, p.IXName)
	set(&l.Peers, p.Peers)
	set(&l.Capacity, p.Capacity)
	set(&l.PortSpeeds, p.PortSpeeds)
	set(&l.Protocols, p.Protocols)
	set(&l.Features, p.Features)
	set(&l.Description, p.Description)
	set(&l.Established, p.Established)
	set(&l.CityImage, p.CityImage)
	set(&l.Pricing, p.Pricing)
	set(&l.RouteServers, p.RouteServers)
}

// ASNPatch carries the mutable ASN fields.
type ASNPatch struct {
	Name          *string `json:"name"`
	Macro         *string `json:"macro"`
	PeeringPolicy *string `json:"peeringPolicy" binding:"omitempty,oneof=Open Selective Restrictive 'No Policy'"`
	Status        *string `json:"status" binding:"omitempty,oneof=ACTIVE CONNECTING INACTIVE"`
}

// SitePatch carries the mutable site fields.
type SitePatch struct {
	Name     *string `json:"name"`
	Provider *string `json:"provider"`
	Address  *string `json:"address"`
	Status   *string `json:"status" binding:"omitempty,oneof=available coming-soon"`
}

// LocationService manages locations and their nested ASN and site lists.
type LocationService struct {
	db *gorm.DB
}

func NewLocationService(db *gorm.DB) *LocationService {
	return &LocationService{db: db}
}

func (s *LocationService) List(ctx context.Context, f LocationFilter) ([]models.Location, error) {
	q := s.db.WithContext(ctx).Order("name")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Region != "" {
		q = q.Where("region = ?", strings.ToUpper(f.Region))
	}
	if f.ContinentID != "" {
		q = q.Where("continent_id = ?", f.ContinentID)
	}

	locations := []models.Location{}
	if err := q.Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *LocationService) load(tx *gorm.DB, id string) (*models.Location, error) {
	var loc models.Location
	err := tx.First(&loc, "id = ?", normalizeKey(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Location not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	return &loc, nil
}

// Create stores a new location. An existing id is a conflict and leaves the
// stored document untouched.
func (s *LocationService) Create(ctx context.Context, loc *models.Location) (*models.Location, error) {
	loc.ID = normalizeKey(loc.ID)
	loc.ApplyDefaults()
	loc.CreatedAt, loc.UpdatedAt = zeroTime, zeroTime

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Location{}).Where("id = ?", loc.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict("Location with this ID already exists")
		}
		return tx.Create(loc).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, conflict("Location with this ID already exists")
	}
	if err != nil {
		return nil, wrap(err, "failed to create location")
	}
	return loc, nil
}

// Update merges patch into the stored location.
func (s *LocationService) Update(ctx context.Context, id string, patch LocationPatch) (*models.Location, error) {
	return s.mutate(ctx, id, func(loc *models.Location) error {
		patch.apply(loc)
		return nil
	})
}

func (s *LocationService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", normalizeKey(id)).Delete(&models.Location{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete location: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Location not found")
	}
	return nil
}

// AddASN appends an ASN and returns the updated list.
func (s *LocationService) AddASN(ctx context.Context, id string, asn models.ASN) ([]models.ASN, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		if lo.ContainsBy(loc.ASNList, func(a models.ASN) bool { return a.ASNNumber == asn.ASNNumber }) {
			return conflict("ASN already exists in this location")
		}
		asn.ApplyDefaults()
		loc.ASNList = append(loc.ASNList, asn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.ASNList, nil
}

func (s *LocationService) UpdateASN(ctx context.Context, id string, asnNumber int, patch ASNPatch) ([]models.ASN, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		_, idx, ok := lo.FindIndexOf(loc.ASNList, func(a models.ASN) bool { return a.ASNNumber == asnNumber })
		if !ok {
			return notFound("ASN not found in this location")
		}
		a := &loc.ASNList[idx]
		set(&a.Name, patch.Name)
		set(&a.Macro, patch.Macro)
		set(&a.PeeringPolicy, patch.PeeringPolicy)
		set(&a.Status, patch.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.ASNList, nil
}

func (s *LocationService) DeleteASN(ctx context.Context, id string, asnNumber int) ([]models.ASN, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		_, idx, ok := lo.FindIndexOf(loc.ASNList, func(a models.ASN) bool { return a.ASNNumber == asnNumber })
		if !ok {
			return notFound("ASN not found in this location")
		}
		loc.ASNList = append(loc.ASNList[:idx], loc.ASNList[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.ASNList, nil
}

// AddSite appends an enabled site and returns the updated list.
func (s *LocationService) AddSite(ctx context.Context, id string, site models.EnabledSite) ([]models.EnabledSite, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		site.ApplyDefaults()
		if lo.ContainsBy(loc.EnabledSites, func(e models.EnabledSite) bool { return e.ID == site.ID }) {
			return conflict("Site with this ID already exists in this location")
		}
		loc.EnabledSites = append(loc.EnabledSites, site)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.EnabledSites, nil
}

func (s *LocationService) UpdateSite(ctx context.Context, id, siteID string, patch SitePatch) ([]models.EnabledSite, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		_, idx, ok := lo.FindIndexOf(loc.EnabledSites, func(e models.EnabledSite) bool { return e.ID == siteID })
		if !ok {
			return notFound("Site not found in this location")
		}
		site := &loc.EnabledSites[idx]
		set(&site.Name, patch.Name)
		set(&site.Provider, patch.Provider)
		set(&site.Address, patch.Address)
		set(&site.Status, patch.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.EnabledSites, nil
}

func (s *LocationService) DeleteSite(ctx context.Context, id, siteID string) ([]models.EnabledSite, error) {
	loc, err := s.mutate(ctx, id, func(loc *models.Location) error {
		_, idx, ok := lo.FindIndexOf(loc.EnabledSites, func(e models.EnabledSite) bool { return e.ID == siteID })
		if !ok {
			return notFound("Site not found in this location")
		}
		loc.EnabledSites = append(loc.EnabledSites[:idx], loc.EnabledSites[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loc.EnabledSites, nil
}

// mutate loads a location, applies fn and saves the result in one
// transaction. A failing fn leaves the stored document unchanged.
func (s *LocationService) mutate(ctx context.Context, id string, fn func(*models.Location) error) (*models.Location, error) {
	var loc *models.Location
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if loc, err = s.load(tx, id); err != nil {
			return err
		}
		if err := fn(loc); err != nil {
			return err
		}
		return tx.Save(loc).Error
	})
	if err != nil {
		return nil, wrap(err, "failed to update location")
	}
	return loc, nil
}
