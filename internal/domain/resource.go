package domain

// ClickedLink is captured per click and replaced, never merged, on the next one.
type ClickedLink struct {
	Href       string
	OriginHTML string
	// Label is a readable rendering of the anchor content, used in diagnostics.
	Label string
}

// Category enumerates the translation-helps resource kinds a link can point to.
type Category int

const (
	CategoryUnrecognized Category = iota
	CategoryTAManual
	CategoryTASameArticle
	CategoryTWEntry
)

func (c Category) String() string {
	switch c {
	case CategoryTAManual:
		return "ta_manual"
	case CategoryTASameArticle:
		return "ta_same_article"
	case CategoryTWEntry:
		return "tw_entry"
	default:
		return "unrecognized"
	}
}

// LinkContext carries the viewer state a link is interpreted against.
type LinkContext struct {
	LanguageID         string
	TAArticleProjectID string
}

// ResourceDescriptor is the classification result for one link.
// When Category is CategoryUnrecognized the remaining fields carry no meaning.
type ResourceDescriptor struct {
	Category     Category
	LanguageID   string
	ResourceID   string
	FilePath     string
	DerivedTitle string
}

// Recognized reports whether the descriptor names a fetchable resource.
func (d ResourceDescriptor) Recognized() bool {
	return d.Category != CategoryUnrecognized
}

// ServerConfig locates the repositories holding translation helps.
type ServerConfig struct {
	Server string
	Owner  string
	Branch string
}

// FetchPlan lists the remote files backing a descriptor.
type FetchPlan struct {
	ContentURL string
	TitleURL   string
}

// Empty reports whether the plan has nothing to fetch.
func (p FetchPlan) Empty() bool {
	return p.ContentURL == "" && p.TitleURL == ""
}

// URLs returns the non-empty URLs, content first.
func (p FetchPlan) URLs() []string {
	urls := make([]string, 0, 2)
	if p.ContentURL != "" {
		urls = append(urls, p.ContentURL)
	}
	if p.TitleURL != "" {
		urls = append(urls, p.TitleURL)
	}
	return urls
}

// Resource is a successfully fetched content and title pair.
type Resource struct {
	Content string
	Title   string
}
