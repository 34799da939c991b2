package shared

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommand returns the launcher for the current platform.
func browserCommand(target string) (*exec.Cmd, error) {
	switch rt := getRuntime(); rt {
	case "darwin":
		return exec.Command("open", target), nil
	case "linux", "freebsd", "openbsd":
		return exec.Command("xdg-open", target), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target), nil
	default:
		return nil, fmt.Errorf("%w: no browser launcher for %s", ErrNotImplemented, rt)
	}
}

// OpenBrowser opens an http(s) page in the default browser without waiting for it.
func OpenBrowser(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: not a web address: %q", ErrInvalidInput, target)
	}

	cmd, err := browserCommand(u.String())
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// BookPageURL fills the catalog page template with a catalog id. Templates without a verb get the id appended.
func BookPageURL(template, catalogID string) string {
	id := url.QueryEscape(catalogID)
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, id)
	}
	return template + id
}
