package database

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"ixadmin/internal/logging"
	"ixadmin/internal/models"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed seed.json
var seedJSON []byte

type seedData struct {
	Continents []models.Continent `json:"continents"`
	Locations  []models.Location  `json:"locations"`
	Services   []models.Service   `json:"services"`
}

// regionContinents derives a continent for seeded locations.
var regionContinents = map[string]string{
	"ASIA":          "asia",
	"EUROPE":        "europe",
	"NORTH AMERICA": "north-america",
	"SOUTH AMERICA": "south-america",
	"MIDDLE EAST":   "middle-east",
	"AFRICA":        "africa",
}

// AdminSeed is the bootstrap administrator account.
type AdminSeed struct {
	Email    string
	Password string
}

// Seed inserts default content into empty collections. Collections that
// already hold rows are left alone, so running it on every start is safe.
func Seed(db *gorm.DB, admin AdminSeed) error {
	var data seedData
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return fmt.Errorf("failed to decode seed data: %w", err)
	}

	logging.Info().Msg("[SEED] Starting database seeding")

	if err := seedAdmin(db, admin); err != nil {
		return err
	}
	if err := seedSingletons(db); err != nil {
		return err
	}

	for i := range data.Locations {
		loc := &data.Locations[i]
		if cont, ok := regionContinents[loc.Region]; ok {
			loc.ContinentID = cont
		}
		loc.ApplyDefaults()
	}
	for i := range data.Services {
		data.Services[i].IsActive = true
	}
	for i := range data.Continents {
		data.Continents[i].IsActive = true
	}

	if err := seedIfEmpty(db, "continents", &models.Continent{}, data.Continents); err != nil {
		return err
	}
	if err := seedIfEmpty(db, "locations", &models.Location{}, data.Locations); err != nil {
		return err
	}
	if err := seedIfEmpty(db, "services", &models.Service{}, data.Services); err != nil {
		return err
	}

	logging.Info().Msg("[SEED] ✓ Database seeding completed")
	return nil
}

func seedAdmin(db *gorm.DB, admin AdminSeed) error {
	if admin.Email == "" || admin.Password == "" {
		logging.Warn().Msg("[SEED] ⚠️  Admin credentials not configured, skipping admin user")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", normalizeEmail(admin.Email)).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if count > 0 {
		logging.Info().Msg("[SEED] Admin user already exists")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	user := models.User{
		Email:    admin.Email,
		Password: string(hash),
		Name:     "Admin",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	logging.Info().Str("email", user.Email).Msg("[SEED] ✓ Admin user created")
	return nil
}

func seedSingletons(db *gorm.DB) error {
	singletons := []any{
		ptr(models.DefaultNetworkStats()),
		ptr(models.DefaultGlobalFabricStats()),
		ptr(models.DefaultGlobalStats()),
	}
	for _, row := range singletons {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
			return fmt.Errorf("failed to seed %T: %w", row, err)
		}
	}
	return nil
}

func seedIfEmpty[T any](db *gorm.DB, name string, model *T, rows []T) error {
	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count %s: %w", name, err)
	}
	if count > 0 {
		logging.Info().Int64("existing", count).Msgf("[SEED] %s already present, skipping", name)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed %s: %w", name, err)
	}
	logging.Info().Int("created", len(rows)).Msgf("[SEED] ✓ %s created", name)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ptr[T any](v T) *T { return &v }
