// Application provider: identity of the running binary.
// Build metadata comes from the module information embedded by the Go linker.
package provider

import (
	"context"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/Guliveer/devicescope/internal/models"
)

var applicationKeys = []string{
	"App Name", "App Version", "Build Version", "App ID", "App State",
	"Install Time", "Runtime Environment", "App Ownership",
	"Application Error",
}

// ApplicationProvider reports the application's identity and state.
type ApplicationProvider struct {
	appName   string
	state     func() string
	buildInfo func() (*debug.BuildInfo, bool)
	exePath   func() (string, error)
}

// NewApplicationProvider creates an application provider. state reports the
// current lifecycle state; nil means always "Active".
func NewApplicationProvider(appName string, state func() string) *ApplicationProvider {
	if state == nil {
		state = func() string { return "Active" }
	}
	return &ApplicationProvider{
		appName:   appName,
		state:     state,
		buildInfo: debug.ReadBuildInfo,
		exePath:   os.Executable,
	}
}

// Name returns the provider identifier.
func (a *ApplicationProvider) Name() string { return "application" }

// Keys returns the attribute keys owned by this provider.
func (a *ApplicationProvider) Keys() []string { return append([]string(nil), applicationKeys...) }

// Query reads build information and the executable's modification time.
func (a *ApplicationProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	version, revision, path := "1.0.0", "", ""
	if info, ok := a.buildInfo(); ok {
		path = info.Main.Path
		if v := info.Main.Version; v != "" && v != "(devel)" {
			version = strings.TrimPrefix(v, "v")
		}
		revision = vcsRevision(info)
	}

	var installed, ownership string
	if exe, err := a.exePath(); err == nil {
		if st, err := os.Stat(exe); err == nil {
			installed = st.ModTime().Format(models.TimestampLayout)
		}
		ownership = executableOwnership(exe)
	}

	var r models.ProviderResult
	r.AddText("App Name", orUnknown(a.appName))
	r.AddText("App Version", version)
	r.AddText("Build Version", orUnknown(revision))
	r.AddText("App ID", orUnknown(path))
	r.AddText("App State", a.state())
	r.AddText("Install Time", orUnknown(installed))
	r.AddText("Runtime Environment", runtimeEnvironment(revision))
	r.AddText("App Ownership", orUnknown(ownership))
	return r, nil
}

// Fallback reports the error message under "Application Error".
func (a *ApplicationProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("Application Error", err.Error())
}

// IsAvailable returns true.
func (a *ApplicationProvider) IsAvailable() bool { return true }

// vcsRevision returns the short commit hash, marked when the tree was dirty.
func vcsRevision(info *debug.BuildInfo) string {
	var rev string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && modified {
		rev += "-dirty"
	}
	return rev
}

func runtimeEnvironment(revision string) string {
	if revision == "" || strings.HasSuffix(revision, "-dirty") {
		return "Development"
	}
	return "Release"
}

// executableOwnership tells a `go run` build apart from an installed binary.
func executableOwnership(exe string) string {
	dir := filepath.Dir(exe)
	if strings.Contains(dir, "go-build") {
		return "go run"
	}
	return "Standalone"
}
