package ports

import "github.com/aalvaropc/kipu/internal/domain"

// ArtifactStore persists apply artifacts for reproducibility.
type ArtifactStore interface {
	SaveApply(artifact domain.ApplyArtifact) (id string, err error)
}
