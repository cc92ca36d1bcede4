package classifier

import (
	"net/url"
	"path"
	"strings"
)

const (
	rcScheme        = "rc:/"
	wildcardSegment = "*"
)

// Locator is a raw link reduced to the path the rules match against.
type Locator struct {
	Raw      string
	Path     string
	Segments []string
	// RC is set when the raw link used the rc:/ scheme.
	RC bool
}

// ParseLocator never fails; ok is false only when the link cannot be read as
// a path at all.
func ParseLocator(raw string) (Locator, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Locator{Raw: raw}, false
	}

	loc := Locator{Raw: raw}
	lower := strings.ToLower(raw)

	switch {
	case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
		parsed, err := url.Parse(raw)
		if err != nil {
			return loc, false
		}
		loc.Path = parsed.Path
	case strings.HasPrefix(lower, rcScheme):
		loc.RC = true
		loc.Path = strings.TrimPrefix(raw[len(rcScheme):], "/")
	default:
		// Relative hrefs resolve against the document root, the way a browser
		// reports them for the viewer's pages.
		rel, _, _ := strings.Cut(raw, "#")
		rel, _, _ = strings.Cut(rel, "?")
		loc.Path = path.Clean("/" + rel)
	}

	loc.Segments = strings.Split(loc.Path, "/")
	return loc, true
}

func (l Locator) segment(i int) string {
	if i < 0 || i >= len(l.Segments) {
		return ""
	}
	return l.Segments[i]
}
