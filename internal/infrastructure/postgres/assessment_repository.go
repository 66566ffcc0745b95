package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/valueobject"
	pgutil "github.com/bibbank/scoring-service/pkg/postgres"
)

const assessmentColumns = `
	id, application_id, client_id,
	probability, score, category, recommendation,
	model_version, schema_version,
	explanation_status, explanation_reason,
	assessed_at, version, created_at, updated_at`

// AssessmentRepository implements port.AssessmentRepository using PostgreSQL.
type AssessmentRepository struct {
	db pgutil.DB
}

// NewAssessmentRepository creates a new PostgreSQL-backed assessment repository.
func NewAssessmentRepository(db pgutil.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Save persists an assessment and replaces its key factors.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *model.Assessment) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO assessments (` + assessmentColumns + `
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				probability = EXCLUDED.probability,
				score = EXCLUDED.score,
				category = EXCLUDED.category,
				recommendation = EXCLUDED.recommendation,
				model_version = EXCLUDED.model_version,
				schema_version = EXCLUDED.schema_version,
				explanation_status = EXCLUDED.explanation_status,
				explanation_reason = EXCLUDED.explanation_reason,
				assessed_at = EXCLUDED.assessed_at,
				version = EXCLUDED.version,
				updated_at = EXCLUDED.updated_at
		`

		_, err := tx.Exec(ctx, query,
			assessment.ID(),
			assessment.ApplicationID(),
			assessment.ClientID(),
			assessment.Probability(),
			assessment.Score(),
			assessment.Category().String(),
			assessment.Recommendation().String(),
			assessment.ModelVersion(),
			assessment.SchemaVersion(),
			assessment.ExplanationStatus(),
			assessment.ExplanationReason(),
			assessment.AssessedAt(),
			assessment.Version(),
			assessment.CreatedAt(),
			assessment.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to save assessment: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM assessment_factors WHERE assessment_id = $1`, assessment.ID()); err != nil {
			return fmt.Errorf("failed to delete old factors: %w", err)
		}

		for i, f := range assessment.Factors() {
			_, err := tx.Exec(ctx, `
				INSERT INTO assessment_factors (
					assessment_id, position, feature, feature_value, raw_value, impact, description
				) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				assessment.ID(), i, f.FeatureName, f.FeatureValue, f.RawValue, f.Impact, f.Description,
			)
			if err != nil {
				return fmt.Errorf("failed to save factor %s: %w", f.FeatureName, err)
			}
		}

		return nil
	})
}

// FindByID retrieves an assessment by its unique identifier.
func (r *AssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	return r.findOne(ctx, query, id)
}

// FindLatestByApplicationID retrieves the most recent assessment of an application.
func (r *AssessmentRepository) FindLatestByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE application_id = $1
		ORDER BY assessed_at DESC
		LIMIT 1`
	return r.findOne(ctx, query, applicationID)
}

// ListByClientID retrieves assessments of a client, newest first.
func (r *AssessmentRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*model.Assessment, error) {
	query := `SELECT ` + assessmentColumns + `
		FROM assessments
		WHERE client_id = $1
		ORDER BY assessed_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}

	var records []assessmentRow
	for rows.Next() {
		var rec assessmentRow
		if err := rec.scan(rows); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan assessment row: %w", err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}

	assessments := make([]*model.Assessment, 0, len(records))
	for _, rec := range records {
		assessment, err := r.hydrate(ctx, rec)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	return assessments, nil
}

func (r *AssessmentRepository) findOne(ctx context.Context, query string, arg uuid.UUID) (*model.Assessment, error) {
	var rec assessmentRow
	if err := rec.scan(r.db.QueryRow(ctx, query, arg)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("assessment %s: %w", arg, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	return r.hydrate(ctx, rec)
}

func (r *AssessmentRepository) hydrate(ctx context.Context, rec assessmentRow) (*model.Assessment, error) {
	category, err := valueobject.RiskCategoryFromString(rec.category)
	if err != nil {
		return nil, fmt.Errorf("failed to parse risk category: %w", err)
	}

	recommendation, err := valueobject.RecommendationFromString(rec.recommendation)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recommendation: %w", err)
	}

	factors, err := r.loadFactors(ctx, rec.id)
	if err != nil {
		return nil, err
	}

	return model.Reconstruct(
		rec.id, rec.applicationID, rec.clientID,
		rec.probability, rec.score,
		category, recommendation,
		rec.modelVersion, rec.schemaVersion,
		rec.explanationStatus, rec.explanationReason,
		factors,
		rec.assessedAt, rec.version, rec.createdAt, rec.updatedAt,
	), nil
}

func (r *AssessmentRepository) loadFactors(ctx context.Context, assessmentID uuid.UUID) ([]model.FactorContribution, error) {
	rows, err := r.db.Query(ctx, `
		SELECT feature, feature_value, raw_value, impact, description
		FROM assessment_factors
		WHERE assessment_id = $1
		ORDER BY position`, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query factors: %w", err)
	}
	defer rows.Close()

	var factors []model.FactorContribution
	for rows.Next() {
		var f model.FactorContribution
		if err := rows.Scan(&f.FeatureName, &f.FeatureValue, &f.RawValue, &f.Impact, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan factor: %w", err)
		}
		factors = append(factors, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate factors: %w", err)
	}

	return factors, nil
}

type assessmentRow struct {
	assessedAt        time.Time
	createdAt         time.Time
	updatedAt         time.Time
	category          string
	recommendation    string
	modelVersion      string
	schemaVersion     string
	explanationStatus string
	explanationReason string
	probability       float64
	score             float64
	version           int
	id                uuid.UUID
	applicationID     uuid.UUID
	clientID          uuid.UUID
}

func (rec *assessmentRow) scan(row pgx.Row) error {
	return row.Scan(
		&rec.id, &rec.applicationID, &rec.clientID,
		&rec.probability, &rec.score, &rec.category, &rec.recommendation,
		&rec.modelVersion, &rec.schemaVersion,
		&rec.explanationStatus, &rec.explanationReason,
		&rec.assessedAt, &rec.version, &rec.createdAt, &rec.updatedAt,
	)
}
