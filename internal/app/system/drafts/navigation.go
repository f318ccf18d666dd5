package drafts

import (
	"net/http"
	"strings"
)

// NavigationType mirrors the browser's navigation-timing type.
type NavigationType string

const (
	NavNavigate    NavigationType = "navigate"
	NavReload      NavigationType = "reload"
	NavBackForward NavigationType = "back_forward"
)

// HeaderNavigationType lets the page report its navigation type explicitly.
const HeaderNavigationType = "X-Navigation-Type"

// NavigationFromRequest classifies a page load. An explicit header or
// "nav" query parameter wins. Otherwise a request carrying
// Cache-Control max-age=0 or no-cache, which browsers send when the user
// reloads, counts as a reload.
func NavigationFromRequest(r *http.Request) NavigationType {
	explicit := r.Header.Get(HeaderNavigationType)
	if explicit == "" {
		explicit = r.URL.Query().Get("nav")
	}
	switch NavigationType(strings.ToLower(strings.TrimSpace(explicit))) {
	case NavReload:
		return NavReload
	case NavBackForward:
		return NavBackForward
	case NavNavigate:
		return NavNavigate
	}

	cc := strings.ToLower(r.Header.Get("Cache-Control"))
	if strings.Contains(cc, "max-age=0") || strings.Contains(cc, "no-cache") {
		return NavReload
	}
	if strings.EqualFold(r.Header.Get("Pragma"), "no-cache") {
		return NavReload
	}
	return NavNavigate
}
