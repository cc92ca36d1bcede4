package urlplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"HelpsResolver/internal/classifier"
	"HelpsResolver/internal/domain"
)

var door43 = domain.ServerConfig{Server: "https://git.door43.org", Owner: "unfoldingWord", Branch: "master"}

func TestBuild_TAManual(t *testing.T) {
	t.Parallel()

	desc := classifier.New(nil).Classify("rc://*/ta/man/translate/translate-names", domain.LinkContext{LanguageID: "en"})
	plan := Build(desc, door43)

	assert.Equal(t, "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/01.md", plan.ContentURL)
	assert.Equal(t, "https://git.door43.org/unfoldingWord/en_ta/raw/branch/master/translate/translate-names/title.md", plan.TitleURL)
}

func TestBuild_TASameArticle(t *testing.T) {
	t.Parallel()

	desc := domain.ResourceDescriptor{Category: domain.CategoryTASameArticle, LanguageID: "es-419", ResourceID: "ta", FilePath: "checking/acceptable"}
	plan := Build(desc, domain.ServerConfig{Server: "https://qa.door43.org/", Owner: "es-419_gl", Branch: "release"})

	assert.Equal(t, "https://qa.door43.org/es-419_gl/es-419_ta/raw/branch/release/checking/acceptable/01.md", plan.ContentURL)
	assert.Equal(t, "https://qa.door43.org/es-419_gl/es-419_ta/raw/branch/release/checking/acceptable/title.md", plan.TitleURL)
}

func TestBuild_TWEntry(t *testing.T) {
	t.Parallel()

	desc := classifier.New(nil).Classify("../kt/grace.md", domain.LinkContext{LanguageID: "en"})
	plan := Build(desc, door43)

	assert.Equal(t, "https://git.door43.org/unfoldingWord/en_tw/raw/branch/master/bible/kt/grace.md", plan.ContentURL)
	assert.Empty(t, plan.TitleURL)
	assert.Equal(t, []string{plan.ContentURL}, plan.URLs())
}

func TestBuild_Unrecognized(t *testing.T) {
	t.Parallel()

	assert.True(t, Build(domain.ResourceDescriptor{}, door43).Empty())
	assert.True(t, Build(domain.ResourceDescriptor{Category: domain.CategoryTWEntry}, door43).Empty())
}

func TestBuild_Deterministic(t *testing.T) {
	t.Parallel()

	desc := domain.ResourceDescriptor{Category: domain.CategoryTAManual, LanguageID: "en", ResourceID: "ta", FilePath: "translate/figs-idiom"}

	first := Build(desc, door43)
	second := Build(desc, door43)
	assert.Equal(t, []byte(first.ContentURL), []byte(second.ContentURL))
	assert.Equal(t, []byte(first.TitleURL), []byte(second.TitleURL))
}
