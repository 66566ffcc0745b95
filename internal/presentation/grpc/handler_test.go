package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/bibbank/scoring-service/internal/application/usecase"
	"github.com/bibbank/scoring-service/internal/domain/model"
	"github.com/bibbank/scoring-service/internal/domain/service"
	"github.com/bibbank/scoring-service/internal/infrastructure/ml"
	"github.com/bibbank/scoring-service/pkg/events"
	"github.com/bibbank/scoring-service/pkg/tlsutil"
)

// --- Mock implementations ---

type mockAssessmentRepo struct {
	saveErr      error
	saved        []*model.Assessment
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Assessment, error)
}

func (m *mockAssessmentRepo) Save(_ context.Context, a *model.Assessment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, a)
	return nil
}

func (m *mockAssessmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Assessment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("assessment %s: %w", id, model.ErrNotFound)
}

func (m *mockAssessmentRepo) FindLatestByApplicationID(_ context.Context, id uuid.UUID) (*model.Assessment, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].ApplicationID() == id {
			return m.saved[i], nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockAssessmentRepo) ListByClientID(_ context.Context, _ uuid.UUID, _, _ int) ([]*model.Assessment, error) {
	return nil, nil
}

type mockEventPublisher struct {
	publishErr error
}

func (m *mockEventPublisher) Publish(_ context.Context, _ ...events.DomainEvent) error {
	return m.publishErr
}

// --- Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func buildTestHandler(t *testing.T, repo *mockAssessmentRepo, publisher *mockEventPublisher) *RiskScoringHandler {
	t.Helper()
	forest, err := ml.LoadForest("../../../models/forest_v1.json")
	require.NoError(t, err)
	preparer, err := service.NewFeaturePreparer(service.DefaultFeatureSchema())
	require.NoError(t, err)
	wrapper := service.NewModelWrapper(forest)
	engine, err := service.NewEngine(preparer, wrapper, service.NewDefaultCategorizer(),
		service.NewExplainer(wrapper, ml.NewPathAttributor(), testLogger()))
	require.NoError(t, err)

	logger := testLogger()
	return NewRiskScoringHandler(UseCases{
		Assess:   usecase.NewAssessApplication(engine, repo, nil, publisher, nil, logger),
		Get:      usecase.NewGetAssessment(repo),
		List:     usecase.NewListAssessments(repo),
		Explain:  usecase.NewExplainAssessment(engine, nil, logger),
		Simulate: usecase.NewSimulateScenarios(engine, nil, logger),
		Predict:  usecase.NewPredictDirect(engine, logger),
		Model:    usecase.NewGetModelInfo(engine),
	}, logger)
}

func applicantMsg() *ApplicantMsg {
	return &ApplicantMsg{
		Age:              40,
		EtatCivil:        "marie",
		NombreEnfants:    2,
		Profession:       "cadre",
		AncienneteEmploi: 120,
		RevenuMensuel:    "5500",
		DetteTotale:      "10000",
	}
}

func loanMsg() *LoanMsg {
	return &LoanMsg{
		TypeCredit:     "immobilier",
		MontantDemande: "300000",
		DureeMois:      240,
		TauxInteret:    "3.5",
	}
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	assert.Equal(t, want, st.Code(), st.Message())
}

// --- Tests ---

func TestAssessApplication(t *testing.T) {
	t.Run("scores the application", func(t *testing.T) {
		repo := &mockAssessmentRepo{}
		h := buildTestHandler(t, repo, &mockEventPublisher{})

		resp, err := h.AssessApplication(context.Background(), &AssessApplicationRequest{
			ApplicationID:       uuid.New().String(),
			ClientID:            uuid.New().String(),
			Demandeur:           applicantMsg(),
			Credit:              loanMsg(),
			InclureExplications: true,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.Assessment)
		assert.Equal(t, "faible", resp.Assessment.Result.Category)
		assert.NotNil(t, resp.Assessment.Explanation)
		assert.Len(t, repo.saved, 1)
	})

	tests := []struct {
		name   string
		mutate func(*AssessApplicationRequest)
		want   codes.Code
	}{
		{name: "bad application id", mutate: func(r *AssessApplicationRequest) { r.ApplicationID = "nope" }, want: codes.InvalidArgument},
		{name: "bad client id", mutate: func(r *AssessApplicationRequest) { r.ClientID = "" }, want: codes.InvalidArgument},
		{name: "missing demandeur", mutate: func(r *AssessApplicationRequest) { r.Demandeur = nil }, want: codes.InvalidArgument},
		{name: "bad amount", mutate: func(r *AssessApplicationRequest) { r.Credit.MontantDemande = "beaucoup" }, want: codes.InvalidArgument},
		{name: "unknown category", mutate: func(r *AssessApplicationRequest) { r.Demandeur.Profession = "astronaute" }, want: codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})
			req := &AssessApplicationRequest{
				ApplicationID: uuid.New().String(),
				ClientID:      uuid.New().String(),
				Demandeur:     applicantMsg(),
				Credit:        loanMsg(),
			}
			tt.mutate(req)

			_, err := h.AssessApplication(context.Background(), req)
			assertCode(t, err, tt.want)
		})
	}

	t.Run("storage failure is internal", func(t *testing.T) {
		h := buildTestHandler(t, &mockAssessmentRepo{saveErr: errors.New("disk full")}, &mockEventPublisher{})

		_, err := h.AssessApplication(context.Background(), &AssessApplicationRequest{
			ApplicationID: uuid.New().String(),
			ClientID:      uuid.New().String(),
			Demandeur:     applicantMsg(),
			Credit:        loanMsg(),
		})
		assertCode(t, err, codes.Internal)
		assert.NotContains(t, err.Error(), "disk full")
	})

	t.Run("nil request", func(t *testing.T) {
		h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})
		_, err := h.AssessApplication(context.Background(), nil)
		assertCode(t, err, codes.InvalidArgument)
	})
}

func TestGetAssessment(t *testing.T) {
	h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})

	_, err := h.GetAssessment(context.Background(), &GetAssessmentRequest{ID: uuid.New().String()})
	assertCode(t, err, codes.NotFound)

	_, err = h.GetAssessment(context.Background(), &GetAssessmentRequest{})
	assertCode(t, err, codes.InvalidArgument)

	_, err = h.GetAssessment(context.Background(), &GetAssessmentRequest{ApplicationID: "x"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestExplainScore(t *testing.T) {
	h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})

	resp, err := h.ExplainScore(context.Background(), &ExplainScoreRequest{
		Demandeur: applicantMsg(),
		Credit:    loanMsg(),
		Format:    "texte",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Explanation.Text, "Score de risque: 10.0%")
	assert.Nil(t, resp.Explanation.Chart)

	_, err = h.ExplainScore(context.Background(), &ExplainScoreRequest{
		Demandeur: applicantMsg(),
		Credit:    loanMsg(),
		Format:    "pdf",
	})
	assertCode(t, err, codes.InvalidArgument)
}

func TestSimulateScenarios(t *testing.T) {
	h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})

	resp, err := h.SimulateScenarios(context.Background(), &SimulateScenariosRequest{
		Demandeur: applicantMsg(),
		Credit:    loanMsg(),
		Scenarios: []ScenarioMsg{
			{Nom: "Incidents", Parametres: map[string]any{"defauts_paiement": float64(3)}},
			{Nom: "Inconnu", Parametres: map[string]any{"couleur": "bleu"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Simulation.Scenarios, 2)
	assert.Equal(t, 1, resp.Simulation.Failed)
	require.NotNil(t, resp.Simulation.Comparison)
	assert.Equal(t, "Incidents", resp.Simulation.Comparison.Best.Name)
	assert.Equal(t, 1, resp.Simulation.Comparison.Best.Index)
	assert.Equal(t, 2, resp.Simulation.Scenarios[1].Index)
	assert.Nil(t, resp.Simulation.Scenarios[0].Explanation)

	t.Run("with explanations", func(t *testing.T) {
		resp, err := h.SimulateScenarios(context.Background(), &SimulateScenariosRequest{
			Demandeur: applicantMsg(),
			Credit:    loanMsg(),
			Scenarios: []ScenarioMsg{
				{Nom: "Incidents", Parametres: map[string]any{"defauts_paiement": float64(3)}},
			},
			InclureExplications: true,
		})
		require.NoError(t, err)
		require.Len(t, resp.Simulation.Scenarios, 1)

		sc := resp.Simulation.Scenarios[0]
		require.NotNil(t, sc.Explanation)
		assert.Equal(t, "tree_path", sc.Explanation.Method)
		assert.Equal(t, []string{"defauts_paiement"}, sc.Changed)
	})
}

func TestGetModelInfo(t *testing.T) {
	h := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})

	resp, err := h.GetModelInfo(context.Background(), &GetModelInfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", resp.Model.Version)
	assert.Equal(t, "tree_path", resp.Model.ExplanationMethod)
}

func TestToStatus(t *testing.T) {
	h := NewRiskScoringHandler(UseCases{}, testLogger())

	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: &model.UnknownCategoryError{Field: "profession", Value: "x"}, want: codes.InvalidArgument},
		{err: fmt.Errorf("find: %w", model.ErrNotFound), want: codes.NotFound},
		{err: model.ErrModelNotLoaded, want: codes.FailedPrecondition},
		{err: context.Canceled, want: codes.Canceled},
		{err: fmt.Errorf("query: %w", context.DeadlineExceeded), want: codes.DeadlineExceeded},
		{err: errors.New("boom"), want: codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assertCode(t, h.toStatus("Test", tt.err), tt.want)
		})
	}
}

func TestServer_JSONOverTheWire(t *testing.T) {
	handler := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})
	srv, err := NewServer(handler, "bufnet", ServerOptions{Reflection: true}, testLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var info GetModelInfoResponse
	err = conn.Invoke(ctx, "/"+ServiceName+"/GetModelInfo", &GetModelInfoRequest{}, &info,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	require.NotNil(t, info.Model)
	assert.Equal(t, "random_forest", info.Model.Algorithm)

	var prediction PredictDirectResponse
	err = conn.Invoke(ctx, "/"+ServiceName+"/PredictDirect",
		&PredictDirectRequest{Demandeur: applicantMsg(), Credit: loanMsg()}, &prediction,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, "approbation", prediction.Prediction.Result.Recommendation)

	err = conn.Invoke(ctx, "/"+ServiceName+"/PredictDirect",
		&PredictDirectRequest{Credit: loanMsg()}, &prediction,
		grpclib.CallContentSubtype("json"))
	assertCode(t, err, codes.InvalidArgument)

	health, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, health.Status)
}

func TestServer_TLS(t *testing.T) {
	certs, err := tlsutil.GenerateSelfSignedCert([]string{"localhost"}, t.TempDir())
	require.NoError(t, err)

	handler := buildTestHandler(t, &mockAssessmentRepo{}, &mockEventPublisher{})
	srv, err := NewServer(handler, "bufnet", ServerOptions{
		TLSCertFile: certs.CertFile,
		TLSKeyFile:  certs.KeyFile,
	}, testLogger())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	creds, err := tlsutil.ClientTLSConfig(certs.CAFile, "localhost")
	require.NoError(t, err)
	conn, err := grpclib.NewClient("passthrough:///bufnet",
		grpclib.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpclib.WithTransportCredentials(creds),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var info GetModelInfoResponse
	err = conn.Invoke(ctx, "/"+ServiceName+"/GetModelInfo", &GetModelInfoRequest{}, &info,
		grpclib.CallContentSubtype("json"))
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", info.Model.Version)

	t.Run("mismatched key pair fails construction", func(t *testing.T) {
		_, err := NewServer(handler, "bufnet", ServerOptions{
			TLSCertFile: certs.CertFile,
			TLSKeyFile:  certs.CAFile,
		}, testLogger())
		assert.Error(t, err)
	})
}
