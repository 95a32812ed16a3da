// Location provider: a position fix gated by a permission flag.
// Hosts without a positioning service supply a fixed fix through config.
package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/models"
)

var locationKeys = []string{
	"Latitude", "Longitude", "Accuracy", "Altitude", "Heading", "Speed",
	"Location", "Location Error",
}

// LocationProvider reports the configured position fix.
type LocationProvider struct {
	cfg config.LocationConfig
}

// NewLocationProvider creates a location provider.
func NewLocationProvider(cfg config.LocationConfig) *LocationProvider {
	return &LocationProvider{cfg: cfg}
}

// Name returns the provider identifier.
func (l *LocationProvider) Name() string { return "location" }

// Keys returns the attribute keys owned by this provider.
func (l *LocationProvider) Keys() []string { return append([]string(nil), locationKeys...) }

// Query returns the fix, or a single "Location: Permission denied" entry when
// access has not been granted. A denial is data, not an error.
func (l *LocationProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !l.cfg.Permitted {
		return models.ErrorResult("Location", "Permission denied"), nil
	}
	if l.cfg.Latitude < -90 || l.cfg.Latitude > 90 {
		return nil, fmt.Errorf("latitude %v out of range", l.cfg.Latitude)
	}
	if l.cfg.Longitude < -180 || l.cfg.Longitude > 180 {
		return nil, fmt.Errorf("longitude %v out of range", l.cfg.Longitude)
	}

	var r models.ProviderResult
	r.AddText("Latitude", strconv.FormatFloat(l.cfg.Latitude, 'f', 6, 64))
	r.AddText("Longitude", strconv.FormatFloat(l.cfg.Longitude, 'f', 6, 64))
	r.AddText("Accuracy", formatOptional(&l.cfg.Accuracy, " meters"))
	r.AddText("Altitude", formatOptional(l.cfg.Altitude, " meters"))
	r.AddText("Heading", formatOptional(l.cfg.Heading, "°"))
	r.AddText("Speed", formatOptional(l.cfg.Speed, " m/s"))
	return r, nil
}

// Fallback reports the error message under "Location Error".
func (l *LocationProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("Location Error", err.Error())
}

// IsAvailable returns true.
func (l *LocationProvider) IsAvailable() bool { return true }

// formatOptional renders a measurement, treating nil and zero as missing.
func formatOptional(v *float64, unit string) string {
	if v == nil || *v == 0 {
		return "Not available"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}
