package classifier

import (
	"log/slog"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"HelpsResolver/internal/domain"
)

const (
	taResourceID       = "ta"
	twResourceID       = "tw"
	defaultTAProjectID = "translate"
	articleFile        = "01.md"
	taManualMarker     = "/ta/man/"
	taManualSegments   = 5
)

var twMarkers = []string{"/other/", "/kt/", "/names/"}

// Rule is one entry of the ordered classification table.
type Rule struct {
	Category domain.Category
	Match    func(loc Locator) bool
	Describe func(loc Locator, lc domain.LinkContext) domain.ResourceDescriptor
}

// Classifier applies rules in order; the first match wins.
type Classifier struct {
	rules  []Rule
	logger *slog.Logger
}

// New builds a classifier over the default rule table.
func New(log *slog.Logger) *Classifier {
	return &Classifier{rules: Rules(), logger: log}
}

// Rules returns the default table. Order is policy: a manual link that also
// ends in 01.md or mentions a words folder must still classify as a manual.
func Rules() []Rule {
	return []Rule{
		{Category: domain.CategoryTAManual, Match: matchTAManual, Describe: describeTAManual},
		{Category: domain.CategoryTASameArticle, Match: matchTASameArticle, Describe: describeTASameArticle},
		{Category: domain.CategoryTWEntry, Match: matchTWEntry, Describe: describeTWEntry},
	}
}

// Classify never fails: links that match no rule are reported as unrecognized.
func (c *Classifier) Classify(rawLink string, lc domain.LinkContext) domain.ResourceDescriptor {
	loc, ok := ParseLocator(rawLink)
	if !ok {
		c.debug("link not parseable", "link", rawLink)
		return domain.ResourceDescriptor{}
	}

	for _, rule := range c.rules {
		if !rule.Match(loc) {
			continue
		}
		desc := rule.Describe(loc, lc)
		c.debug("link classified", "link", rawLink, "category", desc.Category.String(), "file", desc.FilePath)
		return desc
	}

	c.debug("link unrecognized", "link", rawLink, "path", loc.Path)
	return domain.ResourceDescriptor{}
}

func matchTAManual(loc Locator) bool {
	return loc.RC && len(loc.Segments) == taManualSegments && strings.Contains(loc.Path, taManualMarker)
}

func describeTAManual(loc Locator, lc domain.LinkContext) domain.ResourceDescriptor {
	language := loc.segment(0)
	if language == "" || language == wildcardSegment {
		language = lc.LanguageID
	}
	resource := loc.segment(1)
	if resource == "" {
		resource = taResourceID
	}
	return domain.ResourceDescriptor{
		Category:   domain.CategoryTAManual,
		LanguageID: language,
		ResourceID: resource,
		FilePath:   loc.segment(3) + "/" + loc.segment(4),
	}
}

func matchTASameArticle(loc Locator) bool {
	return strings.HasSuffix(loc.Path, articleFile)
}

func describeTASameArticle(loc Locator, lc domain.LinkContext) domain.ResourceDescriptor {
	project := lc.TAArticleProjectID
	if project == "" {
		project = defaultTAProjectID
	}
	return domain.ResourceDescriptor{
		Category:   domain.CategoryTASameArticle,
		LanguageID: lc.LanguageID,
		ResourceID: taResourceID,
		FilePath:   project + "/" + loc.segment(1),
	}
}

// matchTWEntry is best effort: any words folder marker is enough, the segment
// count is not checked.
func matchTWEntry(loc Locator) bool {
	for _, marker := range twMarkers {
		if strings.Contains(loc.Path, marker) {
			return true
		}
	}
	return false
}

func describeTWEntry(loc Locator, lc domain.LinkContext) domain.ResourceDescriptor {
	return domain.ResourceDescriptor{
		Category:     domain.CategoryTWEntry,
		LanguageID:   lc.LanguageID,
		ResourceID:   twResourceID,
		FilePath:     loc.Path,
		DerivedTitle: entryTitle(loc.segment(len(loc.Segments) - 1)),
	}
}

// entryTitle turns "grace.md" into "Grace".
func entryTitle(segment string) string {
	name := strings.TrimSuffix(segment, path.Ext(segment))
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func (c *Classifier) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
