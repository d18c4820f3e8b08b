package dto

import "github.com/spec-kit/pdc-service/internal/domain"

// RepoRequest describes one content delivery repo.
type RepoRequest struct {
	ReleaseID       string `json:"release_id"`
	VariantUID      string `json:"variant_uid"`
	Arch            string `json:"arch"`
	Service         string `json:"service"`
	RepoFamily      string `json:"repo_family"`
	ContentFormat   string `json:"content_format"`
	ContentCategory string `json:"content_category"`
	Name            string `json:"name"`
	Shadow          bool   `json:"shadow"`
	ProductID       *int64 `json:"product_id"`
}

func (r RepoRequest) Domain() domain.Repo {
	return domain.Repo{
		ReleaseID:       r.ReleaseID,
		VariantUID:      r.VariantUID,
		Arch:            r.Arch,
		Service:         r.Service,
		RepoFamily:      r.RepoFamily,
		ContentFormat:   r.ContentFormat,
		ContentCategory: r.ContentCategory,
		Name:            r.Name,
		Shadow:          r.Shadow,
		ProductID:       r.ProductID,
	}
}

// RepoResponse renders a repo.
type RepoResponse struct {
	ID int64 `json:"id"`
	RepoRequest
}

func NewRepoResponse(r domain.Repo) RepoResponse {
	return RepoResponse{ID: r.ID, RepoRequest: RepoRequest{
		ReleaseID:       r.ReleaseID,
		VariantUID:      r.VariantUID,
		Arch:            r.Arch,
		Service:         r.Service,
		RepoFamily:      r.RepoFamily,
		ContentFormat:   r.ContentFormat,
		ContentCategory: r.ContentCategory,
		Name:            r.Name,
		Shadow:          r.Shadow,
		ProductID:       r.ProductID,
	}}
}

// RPMRequest describes one binary package.
type RPMRequest struct {
	Name     string `json:"name"`
	Epoch    int    `json:"epoch"`
	Version  string `json:"version"`
	Release  string `json:"release"`
	Arch     string `json:"arch"`
	SRPMName string `json:"srpm_name"`
}

func (r RPMRequest) Domain() domain.RPM {
	return domain.RPM{Name: r.Name, Epoch: r.Epoch, Version: r.Version, Release: r.Release, Arch: r.Arch, SRPMName: r.SRPMName}
}

// RPMResponse renders a package.
type RPMResponse struct {
	ID int64 `json:"id"`
	RPMRequest
	NVRA string `json:"nvra"`
}

func NewRPMResponse(r domain.RPM) RPMResponse {
	return RPMResponse{
		ID:         r.ID,
		RPMRequest: RPMRequest{Name: r.Name, Epoch: r.Epoch, Version: r.Version, Release: r.Release, Arch: r.Arch, SRPMName: r.SRPMName},
		NVRA:       r.NVRA(),
	}
}
