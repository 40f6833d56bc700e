// Package config gathers the settings of the places program from the
// environment (optionally seeded from a .env file).
package config

import (
	"fmt"
	"strings"
	"time"

	"places/internal/env"
)

// Image backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Reverse geocoding providers.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
	GeocoderNone      = "none"
)

type Config struct {
	DBPath       string
	ImageDir     string
	ImageBackend string
	S3           S3Config

	GoogleAPIKey    string
	Geocoder        string
	NominatimURL    string
	UserAgent       string
	GeocodeTimeout  time.Duration
	GeocodeCacheTTL time.Duration

	PreviewZoom   int
	PreviewWidth  int
	PreviewHeight int

	Device DeviceConfig
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// DeviceConfig drives the desktop stand-ins for the phone capabilities.
type DeviceConfig struct {
	GeoIPDB            string
	IP                 string
	Lat, Lng           float64
	HasFixedPosition   bool
	CameraPermission   string
	LocationPermission string
}

// Load reads the configuration, applying defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:       env.Get("PLACES_DB_PATH", "places.db"),
		ImageDir:     env.Get("PLACES_IMAGE_DIR", "images"),
		ImageBackend: strings.ToLower(env.Get("PLACES_IMAGE_BACKEND", BackendLocal)),
		S3: S3Config{
			Endpoint:  env.Get("MINIO_ENDPOINT", ""),
			AccessKey: env.Get("MINIO_ACCESS_KEY", ""),
			SecretKey: env.Get("MINIO_SECRET_KEY", ""),
			UseSSL:    env.GetBool("MINIO_USE_SSL", false),
			Bucket:    env.Get("PLACES_BUCKET", "places"),
		},
		GoogleAPIKey:    env.Get("GOOGLE_API_KEY", ""),
		NominatimURL:    env.Get("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		UserAgent:       env.Get("PLACES_USER_AGENT", "favourite-places/1.0"),
		GeocodeTimeout:  env.GetDuration("PLACES_GEOCODE_TIMEOUT", 5*time.Second),
		GeocodeCacheTTL: env.GetDuration("PLACES_GEOCODE_CACHE_TTL", 24*time.Hour),
		PreviewZoom:     env.GetInt("PLACES_PREVIEW_ZOOM", 14),
		PreviewWidth:    env.GetInt("PLACES_PREVIEW_WIDTH", 400),
		PreviewHeight:   env.GetInt("PLACES_PREVIEW_HEIGHT", 200),
		Device: DeviceConfig{
			GeoIPDB:            env.Get("PLACES_GEOIP_DB", ""),
			IP:                 env.Get("PLACES_DEVICE_IP", ""),
			CameraPermission:   strings.ToLower(env.Get("PLACES_CAMERA_PERMISSION", "")),
			LocationPermission: strings.ToLower(env.Get("PLACES_LOCATION_PERMISSION", "")),
		},
	}

	_, latOK := env.Lookup("PLACES_DEVICE_LAT")
	_, lngOK := env.Lookup("PLACES_DEVICE_LNG")
	if latOK && lngOK {
		cfg.Device.Lat = env.GetFloat("PLACES_DEVICE_LAT", 0)
		cfg.Device.Lng = env.GetFloat("PLACES_DEVICE_LNG", 0)
		cfg.Device.HasFixedPosition = true
	}

	// Without a key the Google provider cannot work, so Nominatim is the default.
	defGeocoder := GeocoderNominatim
	if cfg.GoogleAPIKey != "" {
		defGeocoder = GeocoderGoogle
	}
	cfg.Geocoder = strings.ToLower(env.Get("PLACES_GEOCODER", defGeocoder))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations that cannot be served.
func (c *Config) Validate() error {
	switch c.ImageBackend {
	case BackendLocal:
	case BackendS3:
		if c.S3.Endpoint == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("missing one or more required environment variables: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown image backend %q", c.ImageBackend)
	}

	switch c.Geocoder {
	case GeocoderNominatim, GeocoderNone:
	case GeocoderGoogle:
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("geocoder %q requires GOOGLE_API_KEY", c.Geocoder)
		}
	default:
		return fmt.Errorf("unknown geocoder %q", c.Geocoder)
	}

	if c.PreviewZoom < 0 || c.PreviewZoom > 21 {
		return fmt.Errorf("preview zoom %d out of range [0, 21]", c.PreviewZoom)
	}
	if c.PreviewWidth <= 0 || c.PreviewHeight <= 0 {
		return fmt.Errorf("preview size %dx%d must be positive", c.PreviewWidth, c.PreviewHeight)
	}
	return nil
}
