package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/pkg/events"
)

// AssessmentRepository defines the persistence port for assessments.
type AssessmentRepository interface {
	// Save persists a new or updated assessment and its key factors.
	Save(ctx context.Context, assessment *model.Assessment) error

	// FindByID retrieves an assessment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error)

	// FindLatestByApplicationID retrieves the most recent assessment of an application.
	FindLatestByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.Assessment, error)

	// ListByClientID retrieves assessments of a client, newest first.
	ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*model.Assessment, error)
}

// ScoreCache holds the latest score per application. Get returns
// model.ErrNotFound on a miss.
type ScoreCache interface {
	Get(ctx context.Context, applicationID uuid.UUID) (model.ScoreSnapshot, error)
	Set(ctx context.Context, snapshot model.ScoreSnapshot) error
	Invalidate(ctx context.Context, applicationID uuid.UUID) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, events ...events.DomainEvent) error
}
