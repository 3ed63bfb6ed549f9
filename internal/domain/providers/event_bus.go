package providers

import (
	"context"

	"github.com/avenahealth/clinical-intake/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// assessment events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AssessmentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AssessmentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event streams
const (
	// EventChannelAssessmentUpdates is the channel for all assessment updates
	EventChannelAssessmentUpdates = "assessment:updates"

	// EventChannelAssessmentPrefix is the prefix for per-assessment channels
	EventChannelAssessmentPrefix = "assessment:"
)

// GetAssessmentChannel returns the channel name for a specific assessment
func GetAssessmentChannel(assessmentID string) string {
	return EventChannelAssessmentPrefix + assessmentID
}
