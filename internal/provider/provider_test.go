package provider

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/Guliveer/devicescope/internal/config"
	"github.com/Guliveer/devicescope/internal/models"
	"github.com/Guliveer/devicescope/internal/platform"
)

type fakePlatform struct {
	battery platform.BatteryStatus
	err     error
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) DMI(context.Context) (platform.DMIInfo, error) {
	return platform.DMIInfo{}, platform.ErrUnsupported
}

func (f *fakePlatform) Battery(context.Context) (platform.BatteryStatus, error) {
	return f.battery, f.err
}

func resultMap(r models.ProviderResult) map[string]string {
	m := make(map[string]string, len(r))
	for _, a := range r {
		m[a.Key] = a.Value.String()
	}
	return m
}

// Every emitted key, fallback keys included, must be declared in Keys().
func assertDeclared(t *testing.T, p Provider, r models.ProviderResult) {
	t.Helper()
	declared := make(map[string]bool)
	for _, k := range p.Keys() {
		declared[k] = true
	}
	for _, a := range r {
		if !declared[a.Key] {
			t.Errorf("%s emitted undeclared key %q", p.Name(), a.Key)
		}
	}
}

func TestPowerProvider(t *testing.T) {
	p := NewPowerProvider(&fakePlatform{battery: platform.BatteryStatus{
		Level: 0.826,
		State: models.BatteryCharging,
		Mode:  models.PowerLow,
	}})

	r, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDeclared(t, p, r)
	got := resultMap(r)
	want := map[string]string{
		"Battery Level": "83%",
		"Battery State": "Charging",
		"Power Mode":    "Low Power Mode",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestPowerProvider_Fallback(t *testing.T) {
	p := NewPowerProvider(&fakePlatform{err: platform.ErrNoBattery})
	if _, err := p.Query(context.Background()); !errors.Is(err, platform.ErrNoBattery) {
		t.Fatalf("Query error = %v, want ErrNoBattery", err)
	}
	fb := p.Fallback(platform.ErrNoBattery)
	assertDeclared(t, p, fb)
	if got := resultMap(fb)["Battery Error"]; got != "Not available" {
		t.Errorf("Battery Error = %q, want %q", got, "Not available")
	}
}

func TestLocationProvider(t *testing.T) {
	alt := 120.5
	tests := []struct {
		name    string
		cfg     config.LocationConfig
		want    map[string]string
		wantErr bool
	}{
		{
			name: "permission denied is data",
			cfg:  config.LocationConfig{Permitted: false, Latitude: 10},
			want: map[string]string{"Location": "Permission denied"},
		},
		{
			name: "fix with optional fields",
			cfg: config.LocationConfig{
				Permitted: true, Latitude: 52.2297, Longitude: 21.0122,
				Accuracy: 15, Altitude: &alt,
			},
			want: map[string]string{
				"Latitude":  "52.229700",
				"Longitude": "21.012200",
				"Accuracy":  "15 meters",
				"Altitude":  "120.5 meters",
				"Heading":   "Not available",
				"Speed":     "Not available",
			},
		},
		{
			name:    "latitude out of range",
			cfg:     config.LocationConfig{Permitted: true, Latitude: 91},
			wantErr: true,
		},
		{
			name:    "longitude out of range",
			cfg:     config.LocationConfig{Permitted: true, Longitude: -181},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLocationProvider(tt.cfg)
			r, err := p.Query(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				assertDeclared(t, p, p.Fallback(err))
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			assertDeclared(t, p, r)
			got := resultMap(r)
			if len(got) != len(tt.want) {
				t.Errorf("got %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestOrientationProvider(t *testing.T) {
	tests := []struct {
		token   string
		want    string
		wantErr bool
	}{
		{"portrait-up", "Portrait Up", false},
		{"landscape-right", "Landscape Right", false},
		{"", "Unknown", false},
		{"sideways", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			p := NewOrientationProvider(StaticOrientation(tt.token))
			r, err := p.Query(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if got := resultMap(p.Fallback(err))["Orientation"]; got != "Unknown" {
					t.Errorf("fallback Orientation = %q, want Unknown", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := resultMap(r)["Screen Orientation"]; got != tt.want {
				t.Errorf("Screen Orientation = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayProvider(t *testing.T) {
	p := NewDisplayProvider(config.DisplayConfig{Width: 390, Height: 844, Scale: 3, FontScale: 1.15})
	r, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDeclared(t, p, r)
	got := resultMap(r)
	want := map[string]string{
		"Screen Width":           "390px",
		"Screen Height":          "844px",
		"Screen Density":         "3x",
		"Font Scale":             "1.15x",
		"Physical Screen Width":  "1170px",
		"Physical Screen Height": "2532px",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	if _, err := NewDisplayProvider(config.DisplayConfig{}).Query(context.Background()); err == nil {
		t.Error("expected error for missing geometry")
	}
}

func TestClassifyInterfaces(t *testing.T) {
	tests := []struct {
		name      string
		ifaces    net.InterfaceStatList
		wantType  string
		connected bool
		reachable bool
	}{
		{
			name:     "nothing",
			wantType: "none",
		},
		{
			name: "loopback only",
			ifaces: net.InterfaceStatList{
				{Name: "lo", Flags: []string{"up", "loopback"}, Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
			},
			wantType: "none",
		},
		{
			name: "wifi with private address",
			ifaces: net.InterfaceStatList{
				{Name: "lo", Flags: []string{"up", "loopback"}, Addrs: net.InterfaceAddrList{{Addr: "127.0.0.1/8"}}},
				{Name: "wlan0", Flags: []string{"up", "broadcast"}, Addrs: net.InterfaceAddrList{{Addr: "192.168.1.20/24"}}},
			},
			wantType:  "wifi",
			connected: true,
			reachable: true,
		},
		{
			name: "down interface skipped",
			ifaces: net.InterfaceStatList{
				{Name: "eth0", Flags: []string{"broadcast"}, Addrs: net.InterfaceAddrList{{Addr: "10.0.0.2/24"}}},
				{Name: "wwan0", Flags: []string{"up"}, Addrs: net.InterfaceAddrList{{Addr: "100.64.0.7/10"}}},
			},
			wantType:  "cellular",
			connected: true,
			reachable: true,
		},
		{
			name: "link-local only",
			ifaces: net.InterfaceStatList{
				{Name: "eth0", Flags: []string{"up"}, Addrs: net.InterfaceAddrList{{Addr: "fe80::1/64"}}},
			},
			wantType:  "ethernet",
			connected: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyInterfaces(tt.ifaces)
			if got.connectionType != tt.wantType {
				t.Errorf("type = %q, want %q", got.connectionType, tt.wantType)
			}
			if got.connected != tt.connected {
				t.Errorf("connected = %v, want %v", got.connected, tt.connected)
			}
			if got.globalAddress != tt.reachable {
				t.Errorf("reachable = %v, want %v", got.globalAddress, tt.reachable)
			}
		})
	}
}

func TestNetworkProvider_ListError(t *testing.T) {
	p := &NetworkProvider{list: func(context.Context) (net.InterfaceStatList, error) {
		return nil, errors.New("netlink: permission denied")
	}}
	_, err := p.Query(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := resultMap(p.Fallback(err))["Network Error"]; got != "netlink: permission denied" {
		t.Errorf("Network Error = %q", got)
	}
}

func TestYearFromBIOSDate(t *testing.T) {
	tests := map[string]string{
		"03/14/2021": "2021",
		"2021-03-14": "",
		"":           "",
		"03/14/21":   "",
		"03/14/abcd": "",
	}
	for in, want := range tests {
		if got := yearFromBIOSDate(in); got != want {
			t.Errorf("yearFromBIOSDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"en_US.UTF-8", "en-US", true},
		{"pl_PL@euro", "pl-PL", true},
		{"de", "de", true},
		{"C", "", false},
		{"", "", false},
		{"!!", "", false},
	}
	for _, tt := range tests {
		tag, ok := parseLocale(tt.in)
		if ok != tt.ok {
			t.Errorf("parseLocale(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && tag.String() != tt.want {
			t.Errorf("parseLocale(%q) = %q, want %q", tt.in, tag.String(), tt.want)
		}
	}
}

func TestDescribeLanguage_Override(t *testing.T) {
	if got := describeLanguage("en-US"); got != "American English" {
		t.Errorf("describeLanguage(en-US) = %q, want American English", got)
	}
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
	if got := describeLanguage(""); got != "Unknown" {
		t.Errorf("describeLanguage with no locale = %q, want Unknown", got)
	}
}

func TestSystemProvider(t *testing.T) {
	p := NewSystemProvider("install-1", "en")
	p.kernel = func() (string, error) { return "", errors.New("no uname") }
	r, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDeclared(t, p, r)
	got := resultMap(r)
	if got["Installation ID"] != "install-1" {
		t.Errorf("Installation ID = %q", got["Installation ID"])
	}
	if got["Session ID"] != p.SessionID() || p.SessionID() == "" {
		t.Errorf("Session ID = %q, want %q", got["Session ID"], p.SessionID())
	}
	if got["Kernel"] != "Unknown" {
		t.Errorf("Kernel = %q, want Unknown", got["Kernel"])
	}
	if NewSystemProvider("", "").SessionID() == p.SessionID() {
		t.Error("session IDs must differ between providers")
	}
}

func TestApplicationProvider(t *testing.T) {
	p := NewApplicationProvider("DeviceScope", func() string { return "Background" })
	p.buildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Path: "github.com/Guliveer/devicescope", Version: "v1.4.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.modified", Value: "false"},
			},
		}, true
	}
	p.exePath = func() (string, error) { return "", errors.New("no executable") }

	r, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDeclared(t, p, r)
	got := resultMap(r)
	want := map[string]string{
		"App Name":            "DeviceScope",
		"App Version":         "1.4.0",
		"Build Version":       "0123456789ab",
		"App ID":              "github.com/Guliveer/devicescope",
		"App State":           "Background",
		"Install Time":        "Unknown",
		"Runtime Environment": "Release",
		"App Ownership":       "Unknown",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestVCSRevision_Dirty(t *testing.T) {
	info := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abc123"},
		{Key: "vcs.modified", Value: "true"},
	}}
	rev := vcsRevision(info)
	if rev != "abc123-dirty" {
		t.Errorf("vcsRevision = %q", rev)
	}
	if runtimeEnvironment(rev) != "Development" {
		t.Errorf("dirty build should be Development")
	}
}

func TestPerformanceProvider(t *testing.T) {
	p := NewPerformanceProvider()
	r, err := p.Query(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	assertDeclared(t, p, r)
	if len(r) != 4 {
		t.Errorf("got %d indicators, want 4", len(r))
	}
}
