package providers

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// EvidencePackProvider assembles the consolidated, PHI-bearing snapshot of one
// assessment's answers consumed by the workup engine. The engine only requires
// that equal logical content canonicalizes identically; how the pack is built
// is the provider's concern.
type EvidencePackProvider interface {
	Build(ctx context.Context, assessmentID string) (*entities.EvidencePack, error)
}
