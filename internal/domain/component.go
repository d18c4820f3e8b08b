package domain

import (
	"time"

	"github.com/spec-kit/pdc-service/internal/export"
)

// ModelGlobalComponent is the audit model name of global components.
const ModelGlobalComponent = "globalcomponent"

var globalComponentFields = []string{"id", "name", "dist_git_path"}

// GlobalComponent is a source package independent of any release.
type GlobalComponent struct {
	ID          int64
	Name        string
	DistGitPath *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c GlobalComponent) ModelName() string { return ModelGlobalComponent }
func (c GlobalComponent) ObjectID() int64   { return c.ID }

// Export returns the audit representation of the component.
func (c GlobalComponent) Export(fields ...string) export.Record {
	return export.Build(globalComponentFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return c.ID, true
		case "name":
			return c.Name, true
		case "dist_git_path":
			return c.DistGitPath, true
		}
		return nil, false
	})
}
