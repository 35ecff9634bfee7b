package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/app"
	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
	pgstore "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/postgres"
	pgmigrations "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/postgres/migrations"
	redisstore "github.com/The-Veteran-Culture-Project/site-sub000/internal/infra/redis"
)

func TestSurveyFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	catalogStore := pgstore.NewCatalogStore(pool)
	for _, q := range sampleCatalog() {
		if err := catalogStore.CreateQuestion(ctx, q); err != nil {
			t.Fatalf("seed question %s: %v", q.ID, err)
		}
	}

	drafts := redisstore.NewDraftStore(redisClient, 5*time.Minute)
	catalog := redisstore.NewCatalogRepository(redisClient, catalogStore, 5*time.Minute)
	submissions := pgstore.NewSubmissionRepository(pool)
	analytics := pgstore.NewAnalyticsRepository(pool)

	tracker := app.NewTrackerService(analytics, nil)
	survey := app.NewSurveyService(drafts, catalog, submissions, tracker, nil, nil)
	admin := app.NewAdminService(submissions, analytics, catalogStore, nil)

	const draftID = "it-draft"
	sessionID := tracker.InitSession(ctx, "", len(sampleCatalog()), "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0")
	if err := survey.AttachTracking(ctx, draftID, sessionID); err != nil {
		t.Fatalf("attach tracking: %v", err)
	}

	for i, q := range sampleCatalog() {
		offset := 2
		if q.Axis == domain.AxisCivilian {
			offset = -1
		}
		if err := survey.SaveAnswer(ctx, draftID, domain.AnswerRecord{Question: q.Text, Axis: q.Axis, Offset: offset}); err != nil {
			t.Fatalf("save answer %s: %v", q.ID, err)
		}
		tracker.RecordResponse(ctx, sessionID, i)
	}
	if err := survey.SaveDemographics(ctx, draftID, domain.DemographicsAnswers{AgeRange: "35-44", Branch: "Army"}); err != nil {
		t.Fatalf("save demographics: %v", err)
	}
	if err := survey.SaveBenefits(ctx, draftID, domain.BenefitsAnswers{BenefitsUsed: []string{"GI Bill"}}); err != nil {
		t.Fatalf("save benefits: %v", err)
	}
	if err := survey.SaveContact(ctx, draftID, domain.ContactAnswers{FirstName: "Jo", LastName: "Reeves", Email: "jo@example.com"}); err != nil {
		t.Fatalf("save contact: %v", err)
	}

	for step := 1; step <= app.WizardSteps; step++ {
		ok, err := survey.CanAdvance(ctx, draftID, step)
		if err != nil {
			t.Fatalf("can advance step %d: %v", step, err)
		}
		if !ok {
			t.Fatalf("step %d unexpectedly blocked", step)
		}
	}

	result, err := survey.Submit(ctx, draftID, app.SubmitRequest{Subscribe: true})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Scores.MilitaryScore != 4 || result.Scores.CivilianScore != -2 {
		t.Fatalf("unexpected scores %+v", result.Scores)
	}
	if result.Scores.Strategy != domain.StrategySeparation {
		t.Fatalf("expected Separation, got %s", result.Scores.Strategy)
	}

	sub, err := submissions.GetSubmission(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("get submission: %v", err)
	}
	if sub.Email != "jo@example.com" || !sub.Subscribe {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if sub.Demographics.Branch != "Army" {
		t.Fatalf("demographics not round-tripped through jsonb: %+v", sub.Demographics)
	}

	rows, err := submissions.ListQuestionResponses(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("list detail rows: %v", err)
	}
	if len(rows) != len(sampleCatalog()) {
		t.Fatalf("expected %d detail rows, got %d", len(sampleCatalog()), len(rows))
	}
	for _, row := range rows {
		if row.Category == "" || row.Category == "Unknown" {
			t.Fatalf("expected catalog category on row %q, got %q", row.Question, row.Category)
		}
	}

	// tracking session rewritten to the submission id and completed
	if _, err := analytics.GetSession(ctx, sessionID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("old session id should be gone, got %v", err)
	}
	session, err := analytics.GetSession(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("get relinked session: %v", err)
	}
	if session.CompletionRate != 100 || session.CompletedAt == nil {
		t.Fatalf("expected completed session, got %+v", session)
	}

	// admin delete cascades to detail rows
	if err := admin.DeleteSubmission(ctx, result.SubmissionID); err != nil {
		t.Fatalf("delete submission: %v", err)
	}
	if _, err := submissions.GetSubmission(ctx, result.SubmissionID); !errors.Is(err, domain.ErrSubmissionNotFound) {
		t.Fatalf("expected submission gone, got %v", err)
	}
	rows, err = submissions.ListQuestionResponses(ctx, result.SubmissionID)
	if err != nil {
		t.Fatalf("list detail rows after delete: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected cascaded delete, %d rows remain", len(rows))
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleCatalog() []domain.Question {
	return []domain.Question{
		{ID: "it-q1", Text: "I still feel like a soldier.", Axis: domain.AxisMilitary, Category: "Identity", Active: true, Position: 1},
		{ID: "it-q2", Text: "Military values guide my decisions.", Axis: domain.AxisMilitary, Category: "Identity", Active: true, Position: 2},
		{ID: "it-q3", Text: "I feel at home in civilian settings.", Axis: domain.AxisCivilian, Category: "Belonging", Active: true, Position: 3},
		{ID: "it-q4", Text: "I have close civilian friends.", Axis: domain.AxisCivilian, Category: "Community", Active: true, Position: 4},
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "survey", "POSTGRES_PASSWORD": "surveypass", "POSTGRES_DB": "surveydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://survey:surveypass@%s:%s/surveydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
