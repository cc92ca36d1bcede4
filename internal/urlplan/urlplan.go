// Package urlplan turns classified resources into raw file URLs on a
// Gitea-style server.
package urlplan

import (
	"strings"

	"HelpsResolver/internal/domain"
)

const (
	contentFile = "01.md"
	titleFile   = "title.md"
	twBibleDir  = "bible"
)

// Build composes the fetch plan for a descriptor. It performs no I/O and is
// deterministic; unrecognized descriptors yield an empty plan.
func Build(desc domain.ResourceDescriptor, cfg domain.ServerConfig) domain.FetchPlan {
	if desc.FilePath == "" {
		return domain.FetchPlan{}
	}

	switch desc.Category {
	case domain.CategoryTAManual, domain.CategoryTASameArticle:
		base := repoBase(cfg, desc.LanguageID, desc.ResourceID) + "/" + desc.FilePath + "/"
		return domain.FetchPlan{
			ContentURL: base + contentFile,
			TitleURL:   base + titleFile,
		}
	case domain.CategoryTWEntry:
		return domain.FetchPlan{
			ContentURL: repoBase(cfg, desc.LanguageID, "tw") + "/" + twBibleDir + desc.FilePath,
		}
	default:
		return domain.FetchPlan{}
	}
}

func repoBase(cfg domain.ServerConfig, languageID, resourceID string) string {
	return strings.TrimSuffix(cfg.Server, "/") + "/" + cfg.Owner + "/" + languageID + "_" + resourceID + "/raw/branch/" + cfg.Branch
}
