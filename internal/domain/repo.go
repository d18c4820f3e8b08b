package domain

import (
	"time"

	"github.com/spec-kit/pdc-service/internal/export"
)

// ModelRepo is the audit model name of content delivery repositories.
const ModelRepo = "repo"

var repoFields = []string{
	"id", "release_id", "variant_uid", "arch", "service", "repo_family",
	"content_format", "content_category", "name", "shadow", "product_id",
}

// Repo is a content delivery repository of a release variant and arch.
type Repo struct {
	ID              int64
	ReleaseID       string
	VariantUID      string
	Arch            string
	Service         string
	RepoFamily      string
	ContentFormat   string
	ContentCategory string
	Name            string
	Shadow          bool
	ProductID       *int64
	CreatedAt       time.Time
}

func (r Repo) ModelName() string { return ModelRepo }
func (r Repo) ObjectID() int64   { return r.ID }

// Export returns the audit representation of the repo.
func (r Repo) Export(fields ...string) export.Record {
	return export.Build(repoFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return r.ID, true
		case "release_id":
			return r.ReleaseID, true
		case "variant_uid":
			return r.VariantUID, true
		case "arch":
			return r.Arch, true
		case "service":
			return r.Service, true
		case "repo_family":
			return r.RepoFamily, true
		case "content_format":
			return r.ContentFormat, true
		case "content_category":
			return r.ContentCategory, true
		case "name":
			return r.Name, true
		case "shadow":
			return r.Shadow, true
		case "product_id":
			return r.ProductID, true
		}
		return nil, false
	})
}
