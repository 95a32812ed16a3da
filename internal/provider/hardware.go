// Hardware provider: device identity, memory and CPU facts.
// Uses gopsutil for host, memory and CPU data and the platform layer for
// firmware identity.
package provider

import (
	"context"
	"runtime"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/platform"
)

var hardwareKeys = []string{
	"Device Name", "Device Type", "Brand", "Manufacturer", "Model Name",
	"Model ID", "Design Name", "Product Name", "Device Year Class",
	"Total Memory", "Supported CPU Architectures", "Processor", "Logical CPUs",
	"Platform", "Platform Version", "Is Device",
	"Hardware Error",
}

// HardwareProvider collects device identity and hardware attributes.
type HardwareProvider struct {
	platform   platform.Platform
	deviceName string
	deviceType models.DeviceType
	logger     *zap.Logger
}

// NewHardwareProvider creates a hardware provider. deviceName and deviceType
// override detection when non-empty; pass nil logger for no logging.
func NewHardwareProvider(p platform.Platform, deviceName, deviceType string, logger *zap.Logger) *HardwareProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HardwareProvider{
		platform:   p,
		deviceName: deviceName,
		deviceType: models.ParseDeviceType(deviceType),
		logger:     logger,
	}
}

// Name returns the provider identifier.
func (h *HardwareProvider) Name() string { return "hardware" }

// Keys returns the attribute keys owned by this provider.
func (h *HardwareProvider) Keys() []string { return append([]string(nil), hardwareKeys...) }

// Query gathers host identity, firmware, memory and CPU attributes. Only the
// host query is fatal; the others degrade to "Unknown".
func (h *HardwareProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var dmi platform.DMIInfo
	if h.platform != nil {
		if dmi, err = h.platform.DMI(ctx); err != nil {
			h.logger.Debug("Firmware identity not available", zap.Error(err))
		}
	}

	var processor string
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		processor = cpus[0].ModelName
	}
	var logical string
	if n, err := cpu.CountsWithContext(ctx, true); err == nil && n > 0 {
		logical = strconv.Itoa(n)
	}
	var total string
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		total = humanize.IBytes(vm.Total)
	}

	name := h.deviceName
	if name == "" {
		name = info.Hostname
	}
	deviceType := h.deviceType
	if deviceType == models.DeviceUnknown {
		deviceType = platform.DeviceTypeFromChassis(dmi.ChassisType)
	}

	var r models.ProviderResult
	r.AddText("Device Name", orUnknown(name))
	r.AddText("Device Type", deviceType.String())
	r.AddText("Brand", orUnknown(dmi.Vendor))
	r.AddText("Manufacturer", orUnknown(firstNonEmpty(dmi.BoardVendor, dmi.Vendor)))
	r.AddText("Model Name", orUnknown(dmi.ProductName))
	r.AddText("Model ID", orUnknown(dmi.ProductSKU))
	r.AddText("Design Name", orUnknown(dmi.ProductFamily))
	r.AddText("Product Name", orUnknown(dmi.BoardName))
	r.AddText("Device Year Class", orUnknown(yearFromBIOSDate(dmi.BIOSDate)))
	r.AddText("Total Memory", orUnknown(total))
	r.AddText("Supported CPU Architectures", supportedArchitectures(info.KernelArch))
	r.AddText("Processor", orUnknown(processor))
	r.AddText("Logical CPUs", orUnknown(logical))
	r.AddText("Platform", orUnknown(info.Platform))
	r.AddText("Platform Version", orUnknown(info.PlatformVersion))
	r.AddText("Is Device", isDevice(info.VirtualizationRole))
	return r, nil
}

// Fallback reports the hardware failure under a single key.
func (h *HardwareProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("Hardware Error", err.Error())
}

// IsAvailable returns true; host facts are available on all platforms.
func (h *HardwareProvider) IsAvailable() bool { return true }

// yearFromBIOSDate extracts the year from an SMBIOS "MM/DD/YYYY" date.
func yearFromBIOSDate(date string) string {
	parts := strings.Split(date, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return ""
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return ""
	}
	return parts[2]
}

func supportedArchitectures(kernelArch string) string {
	archs := []string{runtime.GOARCH}
	if kernelArch != "" && kernelArch != runtime.GOARCH {
		archs = append([]string{kernelArch}, archs...)
	}
	return strings.Join(archs, ", ")
}

func isDevice(virtualizationRole string) string {
	if virtualizationRole == "guest" {
		return "No (Virtual Machine)"
	}
	return "Yes"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
