// Package hints turns common qrtable failures into short suggestions.
// Every hint has the form "\n  hint: <text>" and is appended to the error
// line printed by the CLI.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-qrtable/internal/fileutil"
)

// IsInContainer reports whether the process runs in a container.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ciVariables are set by the common CI services.
var ciVariables = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

func inCI() bool {
	for _, v := range ciVariables {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// ForBrowserConnect suggests the Chrome launcher settings that usually fix
// a failed launch, plus HTML output as a way around the browser.
func ForBrowserConnect() string {
	var suggestions []string
	if os.Getenv("ROD_NO_SANDBOX") != "1" && (inCI() || IsInContainer()) {
		suggestions = append(suggestions, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if os.Getenv("ROD_BROWSER_BIN") == "" {
		suggestions = append(suggestions, "point ROD_BROWSER_BIN at an installed Chrome")
	}
	suggestions = append(suggestions, "or pass --html-only to skip PDF output")
	return formatHints(suggestions)
}

// ForTimeout returns a hint about increasing timeouts for slow pages.
func ForTimeout() string {
	return format("raise --timeout for PDF rendering or --http-timeout for slow sites")
}

// ForPlaceholderMissing tells the user where the table marker belongs.
func ForPlaceholderMissing() string {
	return format("add a paragraph holding the placeholder where the table should go, or set --placeholder")
}

// ForNoURLs returns a hint when no footnote carried a URL.
func ForNoURLs() string {
	return format("only URLs inside footnotes ([^1]: https://...) are collected")
}

// ForQRFailures returns a hint when some QR codes could not be generated.
func ForQRFailures(failed int) string {
	if failed <= 0 {
		return ""
	}
	return format("check network access to the QR services or configure qr.generators")
}

// ForConfigNotFound suggests --config, or creating the first user-level
// path among searched.
func ForConfigNotFound(searched []string) string {
	for _, p := range searched {
		if strings.Contains(p, ".config/qrtable") {
			return format("use --config /path/to/file.yaml or create " + p)
		}
	}
	return format("use --config /path/to/file.yaml")
}

// ForOutputDirectory is shown when an output file cannot be written.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
