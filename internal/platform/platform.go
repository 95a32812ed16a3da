// Package platform provides an OS abstraction layer for device facts that
// gopsutil does not expose: firmware (DMI) identity and battery state.
// Each supported OS implements the Platform interface.
package platform

import (
	"context"
	"errors"

	"github.com/Guliveer/devicescope/internal/models"
)

// ErrUnsupported is returned when the current OS has no implementation.
var ErrUnsupported = errors.New("platform: not supported on this operating system")

// ErrNoBattery is returned when the device has no battery.
var ErrNoBattery = errors.New("platform: no battery present")

// Platform provides OS-specific device facts.
type Platform interface {
	// Name returns the platform name (linux, windows, stub).
	Name() string

	// DMI returns firmware identity strings. Missing fields are left empty.
	DMI(ctx context.Context) (DMIInfo, error)

	// Battery returns the current battery status.
	// Returns ErrNoBattery when the device runs on mains only.
	Battery(ctx context.Context) (BatteryStatus, error)
}

// DMIInfo holds the firmware identity of the machine.
type DMIInfo struct {
	Vendor        string
	ProductName   string
	ProductFamily string
	ProductSKU    string
	BoardVendor   string
	BoardName     string
	BIOSDate      string
	ChassisType   int
}

// BatteryStatus is the battery reading of the device.
type BatteryStatus struct {
	Level float64 // 0..1
	State models.BatteryState
	Mode  models.PowerMode
}

// DeviceTypeFromChassis maps an SMBIOS chassis type to a DeviceType.
func DeviceTypeFromChassis(chassis int) models.DeviceType {
	switch chassis {
	case 0, 1, 2:
		return models.DeviceUnknown
	case 30, 32:
		return models.DeviceTablet
	default:
		return models.DeviceDesktop
	}
}
