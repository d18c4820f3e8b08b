package domain

import (
	"fmt"

	"github.com/spec-kit/pdc-service/internal/export"
)

// ModelRPM is the audit model name of binary packages.
const ModelRPM = "rpm"

var rpmFields = []string{"id", "name", "epoch", "version", "release", "arch", "srpm_name"}

// RPM is a built binary package.
type RPM struct {
	ID       int64
	Name     string
	Epoch    int
	Version  string
	Release  string
	Arch     string
	SRPMName string
}

// NVRA renders the package as name-version-release.arch.
func (r RPM) NVRA() string {
	return fmt.Sprintf("%s-%s-%s.%s", r.Name, r.Version, r.Release, r.Arch)
}

func (r RPM) ModelName() string { return ModelRPM }
func (r RPM) ObjectID() int64   { return r.ID }

// Export returns the audit representation of the package.
func (r RPM) Export(fields ...string) export.Record {
	return export.Build(rpmFields, fields, func(field string) (any, bool) {
		switch field {
		case "id":
			return r.ID, true
		case "name":
			return r.Name, true
		case "epoch":
			return r.Epoch, true
		case "version":
			return r.Version, true
		case "release":
			return r.Release, true
		case "arch":
			return r.Arch, true
		case "srpm_name":
			return r.SRPMName, true
		}
		return nil, false
	})
}
