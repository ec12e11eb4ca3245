package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// ASN is a peering network present at a location.
type ASN struct {
	ASNNumber     int    `json:"asnNumber" binding:"required"`
	Name          string `json:"name" binding:"required"`
	Macro         string `json:"macro"`
	PeeringPolicy string `json:"peeringPolicy" binding:"omitempty,oneof=Open Selective Restrictive 'No Policy'"`
	Status        string `json:"status" binding:"omitempty,oneof=ACTIVE CONNECTING INACTIVE"`
}

// EnabledSite is a data centre where the exchange fabric is reachable.
type EnabledSite struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Provider string `json:"provider" binding:"required"`
	Address  string `json:"address" binding:"required"`
	Status   string `json:"status" binding:"omitempty,oneof=available coming-soon"`
}

// PricingTier is a port offer. MonthlyPrice is a pointer so a free tier
// still counts as present.
type PricingTier struct {
	PortSpeed    string   `json:"portSpeed" binding:"required"`
	MonthlyPrice *float64 `json:"monthlyPrice" binding:"required,gte=0"`
	SetupFee     float64  `json:"setupFee" binding:"gte=0"`
	Currency     string   `json:"currency"`
}

type RouteServer struct {
	Name string `json:"name" binding:"required"`
	ASN  int    `json:"asn" binding:"required"`
	IPv4 string `json:"ipv4" binding:"required"`
	IPv6 string `json:"ipv6" binding:"required"`
}

// Location is an exchange point of presence. Nested lists are stored as JSON
// columns so the whole document is read and written in one row.
type Location struct {
	ID           string        `json:"id" gorm:"primaryKey;size:64" binding:"required"`
	Name         string        `json:"name" gorm:"not null;index" binding:"required"`
	Coordinates  []float64     `json:"coordinates" gorm:"serializer:json" binding:"required,len=2"`
	Code         string        `json:"code" gorm:"not null" binding:"required"`
	Region       string        `json:"region" gorm:"not null;index" binding:"required"`
	ASNs         int           `json:"asns"`
	Sites        int           `json:"sites"`
	ASNList      []ASN         `json:"asnList" gorm:"serializer:json" binding:"omitempty,dive"`
	EnabledSites []EnabledSite `json:"enabledSites" gorm:"serializer:json" binding:"omitempty,dive"`
	Status       string        `json:"status" gorm:"size:16;index" binding:"omitempty,oneof=current upcoming"`
	Country      string        `json:"country"`
	ContinentID  string        `json:"continentId" gorm:"size:64;index"`
	Latency      string        `json:"latency"`
	Datacenter   string        `json:"datacenter"`
	Address      string        `json:"address"`
	IXName       string        `json:"ixName"`
	Peers        int           `json:"peers"`
	Capacity     string        `json:"capacity"`
	Uptime       string        `json:"uptime"`
	PortSpeeds   []string      `json:"portSpeeds" gorm:"serializer:json"`
	Protocols    []string      `json:"protocols" gorm:"serializer:json"`
	Features     []string      `json:"features" gorm:"serializer:json"`
	Description  string        `json:"description"`
	Established  string        `json:"established"`
	CityImage    string        `json:"cityImage"`
	Pricing      []PricingTier `json:"pricing" gorm:"serializer:json" binding:"omitempty,dive"`
	RouteServers []RouteServer `json:"routeServers" gorm:"serializer:json" binding:"omitempty,dive"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

const (
	LocationCurrent  = "current"
	LocationUpcoming = "upcoming"
)

// ApplyDefaults fills unset optional fields for a new location.
func (l *Location) ApplyDefaults() {
	if l.Status == "" {
		l.Status = LocationCurrent
	}
	if l.ContinentID == "" {
		l.ContinentID = "asia"
	}
	if l.Latency == "" {
		l.Latency = "1.0"
	}
	if l.Capacity == "" {
		l.Capacity = "100+"
	}
	if l.Uptime == "" {
		l.Uptime = "99.99%"
	}
	if l.PortSpeeds == nil {
		l.PortSpeeds = []string{"1G", "10G", "40G", "100G"}
	}
	if l.Protocols == nil {
		l.Protocols = []string{"BGP-4", "IPv4", "IPv6"}
	}
	if l.ASNList == nil {
		l.ASNList = []ASN{}
	}
	if l.EnabledSites == nil {
		l.EnabledSites = []EnabledSite{}
	}
	if l.Features == nil {
		l.Features = []string{}
	}
	if l.Pricing == nil {
		l.Pricing = []PricingTier{}
	}
	if l.RouteServers == nil {
		l.RouteServers = []RouteServer{}
	}
}

// Normalize applies key casing and nested defaults, and refreshes the
// derived counters.
func (l *Location) Normalize() {
	l.ID = strings.ToLower(strings.TrimSpace(l.ID))
	l.Code = strings.ToUpper(strings.TrimSpace(l.Code))
	l.Region = strings.ToUpper(strings.TrimSpace(l.Region))
	l.Name = strings.TrimSpace(l.Name)

	for i := range l.ASNList {
		l.ASNList[i].ApplyDefaults()
	}
	for i := range l.EnabledSites {
		l.EnabledSites[i].ApplyDefaults()
	}
	for i := range l.Pricing {
		if l.Pricing[i].Currency == "" {
			l.Pricing[i].Currency = "USD"
		}
	}

	l.ASNs = len(l.ASNList)
	l.Sites = len(l.EnabledSites)
}

func (l *Location) BeforeSave(tx *gorm.DB) error {
	l.Normalize()
	return nil
}

func (a *ASN) ApplyDefaults() {
	a.Name = strings.TrimSpace(a.Name)
	if a.PeeringPolicy == "" {
		a.PeeringPolicy = "Open"
	}
	if a.Status == "" {
		a.Status = "ACTIVE"
	}
}

func (s *EnabledSite) ApplyDefaults() {
	s.ID = strings.TrimSpace(s.ID)
	if s.Status == "" {
		s.Status = "available"
	}
}
