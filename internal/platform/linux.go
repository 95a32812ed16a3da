//go:build linux

// Linux Platform implementation.
// Reads firmware identity from /sys/class/dmi/id and battery state from
// /sys/class/power_supply.
package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Guliveer/devicescope/internal/models"
)

// LinuxPlatform implements Platform on top of sysfs.
type LinuxPlatform struct {
	root string
}

// New creates a Linux platform reading from the real sysfs.
func New() Platform {
	return &LinuxPlatform{root: "/"}
}

// NewWithRoot creates a Linux platform reading sysfs below root.
func NewWithRoot(root string) *LinuxPlatform {
	return &LinuxPlatform{root: root}
}

// Name returns the platform identifier.
func (p *LinuxPlatform) Name() string { return "linux" }

// DMI reads firmware identity strings. Unreadable files leave fields empty;
// an error is returned only when the DMI directory itself is missing.
func (p *LinuxPlatform) DMI(ctx context.Context) (DMIInfo, error) {
	dir := filepath.Join(p.root, "sys", "class", "dmi", "id")
	if _, err := os.Stat(dir); err != nil {
		return DMIInfo{}, err
	}
	info := DMIInfo{
		Vendor:        readTrimmed(dir, "sys_vendor"),
		ProductName:   readTrimmed(dir, "product_name"),
		ProductFamily: readTrimmed(dir, "product_family"),
		ProductSKU:    readTrimmed(dir, "product_sku"),
		BoardVendor:   readTrimmed(dir, "board_vendor"),
		BoardName:     readTrimmed(dir, "board_name"),
		BIOSDate:      readTrimmed(dir, "bios_date"),
	}
	if chassis, err := strconv.Atoi(readTrimmed(dir, "chassis_type")); err == nil {
		info.ChassisType = chassis
	}
	return info, ctx.Err()
}

// Battery reads the first power supply of type "Battery".
func (p *LinuxPlatform) Battery(ctx context.Context) (BatteryStatus, error) {
	dir := filepath.Join(p.root, "sys", "class", "power_supply")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return BatteryStatus{}, ErrNoBattery
		}
		return BatteryStatus{}, err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return BatteryStatus{}, err
		}
		supply := filepath.Join(dir, entry.Name())
		if readTrimmed(supply, "type") != "Battery" {
			continue
		}
		capacity, err := strconv.Atoi(readTrimmed(supply, "capacity"))
		if err != nil {
			return BatteryStatus{}, err
		}
		return BatteryStatus{
			Level: float64(capacity) / 100,
			State: parseSupplyStatus(readTrimmed(supply, "status")),
			Mode:  p.powerMode(),
		}, nil
	}
	return BatteryStatus{}, ErrNoBattery
}

// powerMode reads the ACPI platform profile.
func (p *LinuxPlatform) powerMode() models.PowerMode {
	profile := readTrimmed(filepath.Join(p.root, "sys", "firmware", "acpi"), "platform_profile")
	switch profile {
	case "":
		return models.PowerUnknown
	case "low-power", "quiet", "cool":
		return models.PowerLow
	default:
		return models.PowerNormal
	}
}

func parseSupplyStatus(s string) models.BatteryState {
	switch s {
	case "Charging":
		return models.BatteryCharging
	case "Discharging", "Not charging":
		return models.BatteryUnplugged
	case "Full":
		return models.BatteryFull
	default:
		return models.BatteryUnknown
	}
}

func readTrimmed(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
