package models

// DeviceType classifies the form factor of the host.
type DeviceType int

const (
	DeviceUnknown DeviceType = iota
	DevicePhone
	DeviceTablet
	DeviceDesktop
	DeviceTV
)

var deviceTypeNames = map[DeviceType]string{
	DeviceUnknown: "Unknown",
	DevicePhone:   "Phone",
	DeviceTablet:  "Tablet",
	DeviceDesktop: "Desktop",
	DeviceTV:      "TV",
}

func (d DeviceType) String() string { return lookup(deviceTypeNames, d) }

// BatteryState is the charging state reported by the power provider.
type BatteryState int

const (
	BatteryUnknown BatteryState = iota
	BatteryUnplugged
	BatteryCharging
	BatteryFull
)

var batteryStateNames = map[BatteryState]string{
	BatteryUnknown:   "Unknown",
	BatteryUnplugged: "Unplugged",
	BatteryCharging:  "Charging",
	BatteryFull:      "Full",
}

func (b BatteryState) String() string { return lookup(batteryStateNames, b) }

// PowerMode is the system power profile.
type PowerMode int

const (
	PowerUnknown PowerMode = iota
	PowerNormal
	PowerLow
)

var powerModeNames = map[PowerMode]string{
	PowerUnknown: "Unknown",
	PowerNormal:  "Normal",
	PowerLow:     "Low Power Mode",
}

func (p PowerMode) String() string { return lookup(powerModeNames, p) }

// Orientation is the screen orientation.
type Orientation int

const (
	OrientationUnknown Orientation = iota
	OrientationPortraitUp
	OrientationPortraitDown
	OrientationLandscapeLeft
	OrientationLandscapeRight
)

var orientationNames = map[Orientation]string{
	OrientationUnknown:        "Unknown",
	OrientationPortraitUp:     "Portrait Up",
	OrientationPortraitDown:   "Portrait Down",
	OrientationLandscapeLeft:  "Landscape Left",
	OrientationLandscapeRight: "Landscape Right",
}

func (o Orientation) String() string { return lookup(orientationNames, o) }

// ParseOrientation maps a config token ("portrait-up", "landscape-left", ...)
// to an Orientation. Unrecognised tokens yield OrientationUnknown.
func ParseOrientation(s string) Orientation {
	switch s {
	case "portrait", "portrait-up":
		return OrientationPortraitUp
	case "portrait-down":
		return OrientationPortraitDown
	case "landscape", "landscape-left":
		return OrientationLandscapeLeft
	case "landscape-right":
		return OrientationLandscapeRight
	default:
		return OrientationUnknown
	}
}

// ParseDeviceType maps a config token to a DeviceType.
func ParseDeviceType(s string) DeviceType {
	switch s {
	case "phone":
		return DevicePhone
	case "tablet":
		return DeviceTablet
	case "desktop":
		return DeviceDesktop
	case "tv":
		return DeviceTV
	default:
		return DeviceUnknown
	}
}

func lookup[K comparable](table map[K]string, k K) string {
	if s, ok := table[k]; ok {
		return s
	}
	return "Unknown"
}
