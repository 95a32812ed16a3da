package category

// Default category IDs.
const (
	BasicID       = "basic"
	HardwareID    = "hardware"
	DisplayID     = "display"
	NetworkID     = "network"
	PowerID       = "power"
	ApplicationID = "application"
	SystemID      = "system"
	PerformanceID = "performance"
	LocationID    = "location"
)

// DefaultCategories returns the nine built-in categories in display order.
// Provider error keys sit at the end of the category they belong to.
func DefaultCategories() []Category {
	return []Category{
		{
			ID: BasicID, Name: "Basic Information", Icon: "ⓘ", Color: "#3B82F6",
			Keys: []string{"Device Name", "Device Type", "Brand", "Manufacturer", "Model Name",
				"Platform", "Platform Version", "Is Device", "Error", "Error Message"},
		},
		{
			ID: HardwareID, Name: "Hardware Information", Icon: "▣", Color: "#8B5CF6",
			Keys: []string{"Model ID", "Design Name", "Product Name", "Device Year Class",
				"Total Memory", "Supported CPU Architectures", "Processor", "Logical CPUs",
				"Hardware Error"},
		},
		{
			ID: DisplayID, Name: "Display & Screen", Icon: "▭", Color: "#10B981",
			Keys: []string{"Screen Width", "Screen Height", "Screen Density", "Font Scale",
				"Physical Screen Width", "Physical Screen Height", "Screen Orientation",
				"Orientation", "Display Error"},
		},
		{
			ID: NetworkID, Name: "Network Information", Icon: "≋", Color: "#3B82F6",
			Keys: []string{"Connection Type", "Is Connected", "Is Internet Reachable", "Network Error"},
		},
		{
			ID: PowerID, Name: "Power & Battery", Icon: "ϟ", Color: "#F59E0B",
			Keys: []string{"Battery Level", "Battery State", "Power Mode", "Battery Error"},
		},
		{
			ID: ApplicationID, Name: "Application Information", Icon: "◆", Color: "#EF4444",
			Keys: []string{"App Name", "App Version", "Build Version", "App ID", "App State",
				"Install Time", "Runtime Environment", "App Ownership", "Application Error"},
		},
		{
			ID: SystemID, Name: "System Information", Icon: "⚙", Color: "#6366F1",
			Keys: []string{"Runtime Version", "Compiler", "Installation ID", "Session ID",
				"Device Language", "Available Memory", "Architecture", "Kernel", "System Error"},
		},
		{
			ID: PerformanceID, Name: "Performance & Optimization", Icon: "◷", Color: "#8B5CF6",
			Keys: []string{"Touch Responsiveness", "Animation Performance", "Memory Management",
				"Background Processing"},
		},
		{
			ID: LocationID, Name: "Location Information", Icon: "⌖", Color: "#14B8A6",
			Keys: []string{"Latitude", "Longitude", "Accuracy", "Altitude", "Heading", "Speed",
				"Location", "Location Error"},
		},
	}
}

// DefaultBuckets returns the filter bucket mapping of the search UI.
func DefaultBuckets() map[Bucket][]string {
	return map[Bucket][]string{
		Hardware: {HardwareID, PerformanceID},
		Software: {ApplicationID, SystemID},
		Network:  {NetworkID},
		Battery:  {PowerID},
		Display:  {DisplayID},
	}
}

// Default returns the index over the built-in catalog.
func Default() *Index {
	idx, err := New(DefaultCategories(), DefaultBuckets())
	if err != nil {
		panic(err)
	}
	return idx
}
