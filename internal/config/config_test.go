package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PLACES_DB_PATH", "PLACES_IMAGE_DIR", "PLACES_IMAGE_BACKEND", "MINIO_ENDPOINT",
		"MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "GOOGLE_API_KEY", "PLACES_GEOCODER",
		"PLACES_DEVICE_LAT", "PLACES_DEVICE_LNG", "PLACES_PREVIEW_ZOOM",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "places.db", cfg.DBPath)
	assert.Equal(t, BackendLocal, cfg.ImageBackend)
	assert.Equal(t, GeocoderNominatim, cfg.Geocoder)
	assert.Equal(t, 14, cfg.PreviewZoom)
	assert.Equal(t, 400, cfg.PreviewWidth)
	assert.Equal(t, 200, cfg.PreviewHeight)
	assert.Equal(t, 24*time.Hour, cfg.GeocodeCacheTTL)
	assert.False(t, cfg.Device.HasFixedPosition)
}

func TestLoad_GoogleKeySwitchesGeocoder(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "k")
	t.Setenv("PLACES_DEVICE_LAT", "48.8584")
	t.Setenv("PLACES_DEVICE_LNG", "2.2945")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
	assert.True(t, cfg.Device.HasFixedPosition)
	assert.InDelta(t, 48.8584, cfg.Device.Lat, 1e-9)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"s3 without credentials", map[string]string{"PLACES_IMAGE_BACKEND": "s3"}},
		{"unknown backend", map[string]string{"PLACES_IMAGE_BACKEND": "ftp"}},
		{"google without key", map[string]string{"PLACES_GEOCODER": "google"}},
		{"zoom out of range", map[string]string{"PLACES_PREVIEW_ZOOM": "40"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
