// Package hints builds the "\n  hint: ..." suffixes the CLI appends to
// error messages.
package hints

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yushaw/howagentworks/internal/fileutil"
)

const prefix = "\n  hint: "

// ciVars are set by the CI systems we know about.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"}

// BrowserEnv is the part of the environment that decides which browser
// setup hints apply.
type BrowserEnv struct {
	LookupEnv   func(string) (string, bool)
	InContainer bool
}

// DetectBrowserEnv reads the container marker Docker leaves at /.dockerenv.
func DetectBrowserEnv(lookup func(string) (string, bool)) BrowserEnv {
	return BrowserEnv{LookupEnv: lookup, InContainer: fileutil.FileExists("/.dockerenv")}
}

func (e BrowserEnv) get(key string) string {
	if e.LookupEnv == nil {
		return ""
	}
	v, _ := e.LookupEnv(key)
	return v
}

// ForBrowserConnect suggests the rod variables that usually fix a browser
// that would not start. It is empty when both are already set.
func ForBrowserConnect(env BrowserEnv) string {
	var parts []string
	inCI := slices.ContainsFunc(ciVars, func(k string) bool { return env.get(k) != "" })
	if (inCI || env.InContainer) && env.get("ROD_NO_SANDBOX") != "1" {
		parts = append(parts, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if env.get("ROD_BROWSER_BIN") == "" {
		parts = append(parts, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	return join(parts...)
}

func ForTimeout() string {
	return join("for long documents, use --timeout flag")
}

// ForConfigNotFound points at --config and, if one of the searched paths
// is in the user config directory, at that file.
func ForConfigNotFound(searched []string) string {
	hint := "use --config /path/to/howagent.yaml"
	marker := string(filepath.Separator) + "howagent" + string(filepath.Separator)
	if i := slices.IndexFunc(searched, func(p string) bool { return strings.Contains(p, marker) }); i >= 0 {
		hint += " or create " + searched[i]
	}
	return join(hint)
}

func ForOutputDirectory() string {
	return join("check parent directory exists and is writable, or use --out")
}

func ForContentMissing(contentDir string) string {
	return join(fmt.Sprintf("expected docs/reactAgent.{en,zh}.md under %s; use --content to point elsewhere", contentDir))
}

func ForAddressInUse(addr string) string {
	return join(addr + " is busy; pick another with --addr")
}

// ForChromaStyle lists the first few valid highlight styles.
func ForChromaStyle(available []string) string {
	if len(available) == 0 {
		return ""
	}
	const shown = 8
	if len(available) > shown {
		available = append(slices.Clip(available[:shown]), "...")
	}
	return join("available: " + strings.Join(available, ", "))
}

// join formats one hint line; several parts share it, separated by "; ".
func join(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	return prefix + strings.Join(parts, "; ")
}
