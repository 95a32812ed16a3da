//go:build windows

// Windows-specific Platform implementation.
// Uses PowerShell CIM queries for firmware and battery information.
package platform

import (
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Guliveer/devicescope/internal/models"
)

// WindowsPlatform implements Platform for Windows systems.
type WindowsPlatform struct{}

// New creates a new Windows platform instance.
func New() Platform {
	return &WindowsPlatform{}
}

// Name returns the platform identifier.
func (p *WindowsPlatform) Name() string { return "windows" }

// DMI queries Win32_ComputerSystem and Win32_BaseBoard.
func (p *WindowsPlatform) DMI(ctx context.Context) (DMIInfo, error) {
	vendor, err := cim(ctx, "(Get-CimInstance Win32_ComputerSystem).Manufacturer")
	if err != nil {
		return DMIInfo{}, err
	}
	info := DMIInfo{Vendor: vendor}
	info.ProductName, _ = cim(ctx, "(Get-CimInstance Win32_ComputerSystem).Model")
	info.ProductFamily, _ = cim(ctx, "(Get-CimInstance Win32_ComputerSystem).SystemFamily")
	info.ProductSKU, _ = cim(ctx, "(Get-CimInstance Win32_ComputerSystem).SystemSKUNumber")
	info.BoardVendor, _ = cim(ctx, "(Get-CimInstance Win32_BaseBoard).Manufacturer")
	info.BoardName, _ = cim(ctx, "(Get-CimInstance Win32_BaseBoard).Product")
	info.BIOSDate, _ = cim(ctx, "(Get-CimInstance Win32_BIOS).ReleaseDate.ToString('MM/dd/yyyy')")
	if chassis, err := cim(ctx, "(Get-CimInstance Win32_SystemEnclosure).ChassisTypes[0]"); err == nil {
		info.ChassisType, _ = strconv.Atoi(chassis)
	}
	return info, nil
}

// Battery queries Win32_Battery. BatteryStatus 2 means AC power.
func (p *WindowsPlatform) Battery(ctx context.Context) (BatteryStatus, error) {
	out, err := cim(ctx, "$b = Get-CimInstance Win32_Battery; if ($b) { \"$($b.EstimatedChargeRemaining) $($b.BatteryStatus)\" }")
	if err != nil {
		return BatteryStatus{}, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return BatteryStatus{}, ErrNoBattery
	}
	level, err := strconv.Atoi(fields[0])
	if err != nil {
		return BatteryStatus{}, err
	}
	status := BatteryStatus{Level: float64(level) / 100, Mode: models.PowerNormal}
	switch fields[1] {
	case "1":
		status.State = models.BatteryUnplugged
	case "2", "6", "7", "8", "9":
		status.State = models.BatteryCharging
	case "3":
		status.State = models.BatteryFull
	case "4", "5":
		status.State = models.BatteryUnplugged
		status.Mode = models.PowerLow
	}
	return status, nil
}

func cim(ctx context.Context, script string) (string, error) {
	out, err := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script).Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
