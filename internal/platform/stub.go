//go:build !windows && !linux

// Stub Platform implementation for operating systems without a dedicated
// backend. Every query reports ErrUnsupported so providers fall back.
package platform

import "context"

// StubPlatform is a no-op Platform.
type StubPlatform struct{}

// New creates a stub platform instance.
func New() Platform {
	return &StubPlatform{}
}

// Name returns the platform identifier.
func (p *StubPlatform) Name() string { return "stub" }

// DMI is not available on this platform.
func (p *StubPlatform) DMI(context.Context) (DMIInfo, error) {
	return DMIInfo{}, ErrUnsupported
}

// Battery is not available on this platform.
func (p *StubPlatform) Battery(context.Context) (BatteryStatus, error) {
	return BatteryStatus{}, ErrUnsupported
}
