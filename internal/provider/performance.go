package provider

import (
	"context"

	"github.com/Guliveer/devicescope/internal/models"
)

// PerformanceProvider emits the static optimisation indicators shown next to
// the live performance monitor. They describe the app, not measurements.
type PerformanceProvider struct{}

// NewPerformanceProvider creates a performance indicator provider.
func NewPerformanceProvider() *PerformanceProvider { return &PerformanceProvider{} }

func (PerformanceProvider) Name() string { return "performance" }

func (PerformanceProvider) Keys() []string {
	return []string{"Touch Responsiveness", "Animation Performance", "Memory Management", "Background Processing"}
}

func (PerformanceProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var r models.ProviderResult
	r.AddText("Touch Responsiveness", "Optimized")
	r.AddText("Animation Performance", "60 FPS Target")
	r.AddText("Memory Management", "Automatic")
	r.AddText("Background Processing", "Enabled")
	return r, nil
}

func (PerformanceProvider) Fallback(error) models.ProviderResult { return nil }

func (PerformanceProvider) IsAvailable() bool { return true }
