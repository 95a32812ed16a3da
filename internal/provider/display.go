// Display provider: logical and physical screen geometry.
// Terminal hosts have no display API, so the geometry comes from config.
package provider

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/models"
)

var displayKeys = []string{
	"Screen Width", "Screen Height", "Screen Density", "Font Scale",
	"Physical Screen Width", "Physical Screen Height",
	"Display Error",
}

// DisplayProvider reports the configured screen geometry.
type DisplayProvider struct {
	cfg config.DisplayConfig
}

// NewDisplayProvider creates a display provider.
func NewDisplayProvider(cfg config.DisplayConfig) *DisplayProvider {
	return &DisplayProvider{cfg: cfg}
}

// Name returns the provider identifier.
func (d *DisplayProvider) Name() string { return "display" }

// Keys returns the attribute keys owned by this provider.
func (d *DisplayProvider) Keys() []string { return append([]string(nil), displayKeys...) }

// Query renders the geometry. Physical dimensions are the logical ones
// multiplied by the pixel density.
func (d *DisplayProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.cfg.Width <= 0 || d.cfg.Height <= 0 {
		return nil, errors.New("display geometry not configured")
	}
	scale := d.cfg.Scale
	if scale <= 0 {
		scale = 1
	}
	fontScale := d.cfg.FontScale
	if fontScale <= 0 {
		fontScale = 1
	}

	var r models.ProviderResult
	r.AddText("Screen Width", pixels(float64(d.cfg.Width)))
	r.AddText("Screen Height", pixels(float64(d.cfg.Height)))
	r.AddText("Screen Density", factor(scale))
	r.AddText("Font Scale", factor(fontScale))
	r.AddText("Physical Screen Width", pixels(float64(d.cfg.Width)*scale))
	r.AddText("Physical Screen Height", pixels(float64(d.cfg.Height)*scale))
	return r, nil
}

// Fallback reports the error message under "Display Error".
func (d *DisplayProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("Display Error", err.Error())
}

// IsAvailable returns true.
func (d *DisplayProvider) IsAvailable() bool { return true }

func pixels(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', -1, 64) + "px"
}

func factor(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "x"
}
