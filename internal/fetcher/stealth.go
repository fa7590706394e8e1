package fetcher

import (
	"fmt"
	"math/rand"

	"github.com/IshaanNene/ShopScope/internal/config"
)

// StealthConfig configures launch flags and fingerprint overrides for the
// browser session.
type StealthConfig struct {
	// Patch the page with go-rod/stealth evasions
	Enabled bool

	// Window size for browser launch, "w,h"
	WindowSize string

	UserAgent string

	// Language override (e.g., "en-US")
	Language string

	// Platform override (e.g., "Win32", "MacIntel", "Linux x86_64")
	Platform string

	// Hardware concurrency (number of CPU cores to report)
	HardwareConcurrency int
}

// StealthFromConfig builds a StealthConfig from the browser section.
// Platform and core count are randomized per run.
func StealthFromConfig(cfg config.BrowserConfig) *StealthConfig {
	platforms := []string{"Win32", "MacIntel", "Linux x86_64"}
	return &StealthConfig{
		Enabled:             cfg.Stealth,
		WindowSize:          cfg.WindowSize,
		UserAgent:           cfg.UserAgent,
		Language:            "en-US",
		Platform:            platforms[rand.Intn(len(platforms))],
		HardwareConcurrency: 4 + rand.Intn(13),
	}
}

// OverrideJS returns the script injected into every new document when
// stealth is enabled. It complements the go-rod/stealth evasions with the
// navigator values chosen for this run.
func (sc *StealthConfig) OverrideJS() string {
	return fmt.Sprintf(`(() => {
Object.defineProperty(navigator, 'platform', { get: () => '%s' });
Object.defineProperty(navigator, 'language', { get: () => '%s' });
Object.defineProperty(navigator, 'languages', { get: () => ['%s', 'en'] });
Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => %d });
Object.defineProperty(navigator, 'webdriver', { get: () => false });
})();`, sc.Platform, sc.Language, sc.Language, sc.HardwareConcurrency)
}
