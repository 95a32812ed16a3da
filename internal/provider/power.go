// Power provider: battery level, charging state and power mode.
// Reads the battery through the platform layer.
package provider

import (
	"context"
	"fmt"
	"math"

	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/platform"
)

var powerKeys = []string{
	"Battery Level", "Battery State", "Power Mode",
	"Battery Error",
}

// PowerProvider collects battery attributes.
type PowerProvider struct {
	platform platform.Platform
}

// NewPowerProvider creates a power provider backed by p.
func NewPowerProvider(p platform.Platform) *PowerProvider {
	return &PowerProvider{platform: p}
}

// Name returns the provider identifier.
func (p *PowerProvider) Name() string { return "power" }

// Keys returns the attribute keys owned by this provider.
func (p *PowerProvider) Keys() []string { return append([]string(nil), powerKeys...) }

// Query reads the battery status.
func (p *PowerProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	status, err := p.platform.Battery(ctx)
	if err != nil {
		return nil, err
	}
	var r models.ProviderResult
	r.AddText("Battery Level", fmt.Sprintf("%d%%", int(math.Round(status.Level*100))))
	r.AddText("Battery State", status.State.String())
	r.AddText("Power Mode", status.Mode.String())
	return r, nil
}

// Fallback hides the cause: battery failures are shown as "Not available".
func (p *PowerProvider) Fallback(error) models.ProviderResult {
	return models.ErrorResult("Battery Error", "Not available")
}

// IsAvailable reports whether a platform backend is configured.
func (p *PowerProvider) IsAvailable() bool { return p.platform != nil }
