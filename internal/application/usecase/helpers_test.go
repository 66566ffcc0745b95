package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/scoring-service/internal/application/dto"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/domain/service"
	"github.com/bibbank/scoring-service/internal/infrastructure/ml"
	"github.com/bibbank/scoring-service/pkg/events"
)

const forestArtifact = "../../../models/forest_v1.json"

// --- Mock implementations ---

type mockAssessmentRepository struct {
	saved              []*model.Assessment
	saveFunc           func(ctx context.Context, assessment *model.Assessment) error
	findByIDFunc       func(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
	findLatestFunc     func(ctx context.Context, applicationID uuid.UUID) (*model.Assessment, error)
	listByClientIDFunc func(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*model.Assessment, error)
	findLatestCalls    int
}

func (m *mockAssessmentRepository) Save(ctx context.Context, assessment *model.Assessment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, assessment)
	}
	m.saved = append(m.saved, assessment)
	return nil
}

func (m *mockAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, model.ErrNotFound
}

func (m *mockAssessmentRepository) FindLatestByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.Assessment, error) {
	m.findLatestCalls++
	if m.findLatestFunc != nil {
		return m.findLatestFunc(ctx, applicationID)
	}
	return nil, model.ErrNotFound
}

func (m *mockAssessmentRepository) ListByClientID(ctx context.Context, clientID uuid.UUID, limit, offset int) ([]*model.Assessment, error) {
	if m.listByClientIDFunc != nil {
		return m.listByClientIDFunc(ctx, clientID, limit, offset)
	}
	return nil, nil
}

type mockScoreCache struct {
	entries map[uuid.UUID]model.ScoreSnapshot
	getErr  error
	setErr  error
	sets    int
}

func newMockScoreCache() *mockScoreCache {
	return &mockScoreCache{entries: make(map[uuid.UUID]model.ScoreSnapshot)}
}

func (m *mockScoreCache) Get(_ context.Context, applicationID uuid.UUID) (model.ScoreSnapshot, error) {
	if m.getErr != nil {
		return model.ScoreSnapshot{}, m.getErr
	}
	s, ok := m.entries[applicationID]
	if !ok {
		return model.ScoreSnapshot{}, model.ErrNotFound
	}
	return s, nil
}

func (m *mockScoreCache) Set(_ context.Context, snapshot model.ScoreSnapshot) error {
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[snapshot.ApplicationID] = snapshot
	return nil
}

func (m *mockScoreCache) Invalidate(_ context.Context, applicationID uuid.UUID) error {
	delete(m.entries, applicationID)
	return nil
}

type mockEventPublisher struct {
	published   []events.DomainEvent
	publishFunc func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.published = append(m.published, evts...)
	return nil
}

type recordingMetrics struct {
	categories  []string
	unavailable int
	succeeded   int
	failed      int
	hits        int
	misses      int
}

func (m *recordingMetrics) ScoreRecorded(_ context.Context, category string, _ time.Duration) {
	m.categories = append(m.categories, category)
}

func (m *recordingMetrics) ExplanationUnavailable(context.Context, string) { m.unavailable++ }

func (m *recordingMetrics) ScenariosSimulated(_ context.Context, succeeded, failed int) {
	m.succeeded += succeeded
	m.failed += failed
}

func (m *recordingMetrics) CacheLookup(_ context.Context, hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// --- Fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newEngine assembles the production pipeline around the bundled forest.
// A nil attributor leaves explanations unavailable.
func newEngine(t *testing.T, attributor port.Attributor) *service.Engine {
	t.Helper()
	forest, err := ml.LoadForest(forestArtifact)
	require.NoError(t, err)

	preparer, err := service.NewFeaturePreparer(service.DefaultFeatureSchema())
	require.NoError(t, err)

	wrapper := service.NewModelWrapper(forest)
	engine, err := service.NewEngine(
		preparer,
		wrapper,
		service.NewDefaultCategorizer(),
		service.NewExplainer(wrapper, attributor, discardLogger(), service.WithTopK(3)),
	)
	require.NoError(t, err)
	return engine
}

// lowRiskApplicant scores 10 (faible) against the bundled forest.
func lowRiskApplicant() model.ApplicantRecord {
	return model.ApplicantRecord{
		Age:              40,
		MaritalStatus:    "marie",
		Dependents:       2,
		Profession:       "cadre",
		EmploymentMonths: 120,
		MonthlyIncome:    decimal.NewFromInt(5500),
		TotalDebt:        decimal.NewFromInt(10000),
	}
}

// highRiskApplicant scores 61.7 (eleve) against the bundled forest.
func highRiskApplicant() model.ApplicantRecord {
	a := lowRiskApplicant()
	a.PriorDefaults = 3
	a.MonthlyIncome = decimal.NewFromInt(2000)
	a.EmploymentMonths = 6
	return a
}

func mortgage() model.LoanRequest {
	return model.LoanRequest{
		CreditType:     "immobilier",
		Amount:         decimal.NewFromInt(300000),
		DurationMonths: 240,
		InterestRate:   decimal.RequireFromString("3.5"),
	}
}

func assessRequest(applicant model.ApplicantRecord) dto.AssessRequest {
	return dto.AssessRequest{
		ApplicationID:       uuid.New(),
		ClientID:            uuid.New(),
		Applicant:           applicant,
		Loan:                mortgage(),
		IncludeExplanations: true,
	}
}
