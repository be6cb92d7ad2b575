package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelvins/geocoder"

	"github.com/metpoll/met-sensor-poller/internal/forecast"
)

var validate = validator.New()

// ErrNoCoordinates is returned when neither explicit, host-level nor
// geocoded coordinates are available. It is fatal to setup.
var ErrNoCoordinates = errors.New("latitude or longitude not set")

type AppConfig struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
	Elevation int

	// ForecastOffset is added to now to obtain the target forecast time.
	ForecastOffset time.Duration

	// NamePrefix is prepended to every sensor's display name.
	NamePrefix string `validate:"required"`

	// Conditions lists the monitored field types.
	Conditions []forecast.FieldType `validate:"min=1"`

	Schema   string `validate:"oneof=json xml"`
	Endpoint string `validate:"omitempty,url"`

	WebhookURL string `validate:"omitempty,url"`

	// Sensor state history retention.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
// Missing coordinates are a setup error, not something to retry.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		NamePrefix: getenvDefault("SENSOR_NAME_PREFIX", "yr"),
		Schema:     getenvDefault("MET_SCHEMA", "json"),
		Endpoint:   os.Getenv("MET_ENDPOINT"),
		WebhookURL: os.Getenv("WEBHOOK_URL"),
		Port:       getenvDefault("PORT", "8080"),
	}

	if err := loadCoordinates(cfg); err != nil {
		return nil, err
	}

	offsetHours := getenvInt("FORECAST_OFFSET_HOURS", 0)
	cfg.ForecastOffset = time.Duration(offsetHours) * time.Hour

	conditions, err := parseConditions(getenvDefault("MONITORED_CONDITIONS", "symbol"))
	if err != nil {
		return nil, err
	}
	cfg.Conditions = conditions

	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 96)

	maxAgeStr := getenvDefault("STORE_MAX_AGE", "24h")
	maxAge, err := time.ParseDuration(maxAgeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadCoordinates resolves the target location: explicit MET_* coordinates
// first, then host-level HOME_* location, then optional geocoding of a
// configured city.
func loadCoordinates(cfg *AppConfig) error {
	lat, latOK, err := getenvFloat("MET_LATITUDE")
	if err != nil {
		return err
	}
	lon, lonOK, err := getenvFloat("MET_LONGITUDE")
	if err != nil {
		return err
	}

	if !latOK || !lonOK {
		lat, latOK, err = getenvFloat("HOME_LATITUDE")
		if err != nil {
			return err
		}
		lon, lonOK, err = getenvFloat("HOME_LONGITUDE")
		if err != nil {
			return err
		}
	}

	if latOK && lonOK {
		cfg.Latitude = lat
		cfg.Longitude = lon
	} else {
		city := os.Getenv("MET_LOCATION_CITY")
		apiKey := os.Getenv("GEOCODER_API_KEY")
		if city == "" || apiKey == "" {
			return ErrNoCoordinates
		}

		geocoder.ApiKey = apiKey
		location, err := geocoder.Geocoding(geocoder.Address{
			City:    city,
			Country: os.Getenv("MET_LOCATION_COUNTRY"),
		})
		if err != nil {
			return fmt.Errorf("geocoding %q: %w", city, err)
		}
		cfg.Latitude = location.Latitude
		cfg.Longitude = location.Longitude
	}

	elevation, ok, err := getenvFloat("MET_ELEVATION")
	if err != nil {
		return err
	}
	if !ok {
		elevation, _, err = getenvFloat("HOME_ELEVATION")
		if err != nil {
			return err
		}
	}
	cfg.Elevation = int(elevation)

	return nil
}

func parseConditions(s string) ([]forecast.FieldType, error) {
	var conditions []forecast.FieldType
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ft, err := forecast.ParseFieldType(part)
		if err != nil {
			return nil, fmt.Errorf("invalid MONITORED_CONDITIONS: %w", err)
		}
		conditions = append(conditions, ft)
	}
	if len(conditions) == 0 {
		return nil, errors.New("MONITORED_CONDITIONS must not be empty")
	}
	return conditions, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string) (float64, bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, true, nil
}
