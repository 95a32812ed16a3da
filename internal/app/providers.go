package app

import (
	"go.uber.org/zap"

	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/platform"
	"github.com/Guliveer/devicescope/internal/provider"
)

// DefaultProviders builds the standard provider set for cfg. state reports
// the application lifecycle state shown under "App State".
func DefaultProviders(cfg *config.Config, installationID string, state func() string, logger *zap.Logger) []provider.Provider {
	p := platform.New()
	dev := cfg.Device
	return []provider.Provider{
		provider.NewHardwareProvider(p, dev.DeviceName, dev.DeviceType, logger),
		provider.NewDisplayProvider(dev.Display),
		provider.NewOrientationProvider(provider.StaticOrientation(dev.Display.Orientation)),
		provider.NewNetworkProvider(),
		provider.NewPowerProvider(p),
		provider.NewApplicationProvider(dev.AppName, state),
		provider.NewSystemProvider(installationID, dev.Language),
		provider.NewPerformanceProvider(),
		provider.NewLocationProvider(dev.Location),
	}
}
