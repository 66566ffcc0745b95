package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/pkg/kafka"
)

// TopicApplicationSubmitted carries credit applications awaiting a score.
const TopicApplicationSubmitted = "lending.application.submitted"

// Assessor scores a credit application.
type Assessor interface {
	Execute(ctx context.Context, req dto.AssessRequest) (dto.AssessmentResponse, error)
}

// ApplicationConsumer turns submitted-application messages into assessments.
type ApplicationConsumer struct {
	assessor Assessor
	logger   *slog.Logger
}

// NewApplicationConsumer creates a consumer handler bound to an assessor.
func NewApplicationConsumer(assessor Assessor, logger *slog.Logger) *ApplicationConsumer {
	return &ApplicationConsumer{assessor: assessor, logger: logger}
}

// Handle implements kafka.Handler. Messages that can never succeed
// (malformed JSON, missing IDs, invalid records) are logged and
// acknowledged; other failures are returned so the message is redelivered.
func (c *ApplicationConsumer) Handle(ctx context.Context, msg kafka.Message) error {
	var req dto.AssessRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Error("dropping malformed application message",
			slog.String("key", string(msg.Key)),
			slog.String("error", err.Error()),
		)
		return nil
	}
	if req.ApplicationID == uuid.Nil || req.ClientID == uuid.Nil {
		c.logger.Error("dropping application message without identifiers",
			slog.String("key", string(msg.Key)),
		)
		return nil
	}

	resp, err := c.assessor.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, model.ErrInput) {
			c.logger.Warn("rejecting invalid application",
				slog.String("application_id", req.ApplicationID.String()),
				slog.String("error", err.Error()),
			)
			return nil
		}
		return fmt.Errorf("assess application %s: %w", req.ApplicationID, err)
	}

	c.logger.Info("application assessed",
		slog.String("application_id", req.ApplicationID.String()),
		slog.Float64("score", resp.Result.Score),
		slog.String("categorie", resp.Result.Category),
		slog.Bool("depuis_cache", resp.Cached),
	)
	return nil
}
