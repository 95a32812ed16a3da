// System provider: runtime, locale and kernel facts plus the identifiers of
// this installation and session.
package provider

import (
	"context"
	"os"
	"runtime"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/Guliveer/devicescope/internal/models"
)

var systemKeys = []string{
	"Runtime Version", "Compiler", "Installation ID", "Session ID",
	"Device Language", "Available Memory", "Architecture", "Kernel",
	"System Error",
}

// SystemProvider collects runtime and operating system attributes.
type SystemProvider struct {
	installationID string
	sessionID      string
	language       string
	kernel         func() (string, error)
}

// NewSystemProvider creates a system provider. installationID is the
// persisted per-install identifier; languageOverride, when non-empty, takes
// precedence over the locale environment. A fresh session ID is minted here.
func NewSystemProvider(installationID, languageOverride string) *SystemProvider {
	return &SystemProvider{
		installationID: installationID,
		sessionID:      uuid.NewString(),
		language:       languageOverride,
		kernel:         kernelVersion,
	}
}

// SessionID returns the identifier minted for this process.
func (s *SystemProvider) SessionID() string { return s.sessionID }

// Name returns the provider identifier.
func (s *SystemProvider) Name() string { return "system" }

// Keys returns the attribute keys owned by this provider.
func (s *SystemProvider) Keys() []string { return append([]string(nil), systemKeys...) }

// Query gathers the attributes. Memory and kernel lookups degrade to
// "Unknown" rather than failing the provider.
func (s *SystemProvider) Query(ctx context.Context) (models.ProviderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var available string
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		available = humanize.IBytes(vm.Available)
	}
	kernel, _ := s.kernel()

	var r models.ProviderResult
	r.AddText("Runtime Version", runtime.Version())
	r.AddText("Compiler", runtime.Compiler)
	r.AddText("Installation ID", orUnknown(s.installationID))
	r.AddText("Session ID", s.sessionID)
	r.AddText("Device Language", describeLanguage(s.language))
	r.AddText("Available Memory", orUnknown(available))
	r.AddText("Architecture", runtime.GOARCH)
	r.AddText("Kernel", orUnknown(kernel))
	return r, nil
}

// Fallback reports the error message under "System Error".
func (s *SystemProvider) Fallback(err error) models.ProviderResult {
	return models.ErrorResult("System Error", err.Error())
}

// IsAvailable returns true.
func (s *SystemProvider) IsAvailable() bool { return true }

// describeLanguage resolves the override, or the POSIX locale variables, to
// an English language name such as "American English".
func describeLanguage(override string) string {
	raw := override
	if raw == "" {
		for _, env := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
			if v := os.Getenv(env); v != "" {
				raw = v
				break
			}
		}
	}
	tag, ok := parseLocale(raw)
	if !ok {
		return unknown
	}
	if name := display.Tags(language.English).Name(tag); name != "" {
		return name
	}
	return tag.String()
}

// parseLocale accepts BCP 47 tags and POSIX locales ("en_US.UTF-8@euro").
func parseLocale(raw string) (language.Tag, bool) {
	if i := strings.IndexAny(raw, ".@"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.ReplaceAll(raw, "_", "-")
	if raw == "" || raw == "C" || raw == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
