package domain

import (
	"fmt"
	"time"

	"github.com/spec-kit/pdc-service/internal/export"
)

// ModelRelease is the audit model name of releases.
const ModelRelease = "release"

// ReleaseTypeGA is the default release type; it is omitted from release ids.
const ReleaseTypeGA = "ga"

var releaseFields = []string{"id", "release_id", "short", "version", "name", "release_type", "product_id", "active"}

// Release is one version of a product line.
type Release struct {
	ID          int64
	ReleaseID   string
	Short       string
	Version     string
	Name        string
	ReleaseType string
	ProductID   *int64
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BuildReleaseID derives the public identifier of a release.
func BuildReleaseID(short, version, releaseType string) string {
	if releaseType == "" || releaseType == ReleaseTypeGA {
		return fmt.Sprintf("%s-%s", short, version)
	}
	return fmt.Sprintf("%s-%s-%s", short, version, releaseType)
}

func (r Release) ModelName() string { return ModelRelease }
func (r Release) ObjectID() int64   { return r.ID }

// Export returns the audit representation of the release.
func (r Release) Export(fields ...string) export.Record {
	return export.Build(releaseFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return r.ID, true
		case "release_id":
			return r.ReleaseID, true
		case "short":
			return r.Short, true
		case "version":
			return r.Version, true
		case "name":
			return r.Name, true
		case "release_type":
			return r.ReleaseType, true
		case "product_id":
			return r.ProductID, true
		case "active":
			return r.Active, true
		}
		return nil, false
	})
}
