package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alias1177/numbersff/internal/handlers"
	"github.com/Alias1177/numbersff/internal/scoring"
	"github.com/Alias1177/numbersff/models"
)

// MockStore implements handlers.Store for testing
type MockStore struct {
	preds       map[string][]models.PredictionRecord
	actuals     []models.WeeklyStats
	diffs       []models.AccuracyRecord
	metric      *models.AccuracyMetric
	weeks       []models.SeasonWeek
	current     *models.SeasonWeek
	shouldError bool

	gotLimit int
	gotToday string
	calls    int
}

var errDB = errors.New("connection refused")

func (m *MockStore) PingContext(ctx context.Context) error {
	if m.shouldError {
		return errDB
	}
	return nil
}

func (m *MockStore) GetRankedPredictions(ctx context.Context, table string, sw models.SeasonWeek, limit int) ([]models.PredictionRecord, error) {
	m.calls++
	m.gotLimit = limit
	if m.shouldError {
		return nil, errDB
	}
	return m.preds[table], nil
}

func (m *MockStore) GetWeeklyStats(ctx context.Context, sw models.SeasonWeek) ([]models.WeeklyStats, error) {
	if m.shouldError {
		return nil, errDB
	}
	return m.actuals, nil
}

func (m *MockStore) GetPredictionDiffs(ctx context.Context, sw models.SeasonWeek) ([]models.AccuracyRecord, error) {
	m.calls++
	if m.shouldError {
		return nil, errDB
	}
	if m.diffs == nil {
		return []models.AccuracyRecord{}, nil
	}
	return m.diffs, nil
}

func (m *MockStore) GetAccuracyMetric(ctx context.Context, sw models.SeasonWeek) (*models.AccuracyMetric, error) {
	if m.shouldError {
		return nil, errDB
	}
	return m.metric, nil
}

func (m *MockStore) CompletedWeeks(ctx context.Context) ([]models.SeasonWeek, error) {
	m.calls++
	if m.shouldError {
		return nil, errDB
	}
	return m.weeks, nil
}

func (m *MockStore) CurrentSeasonWeek(ctx context.Context, today string) (*models.SeasonWeek, error) {
	m.gotToday = today
	if m.shouldError {
		return nil, errDB
	}
	return m.current, nil
}

// MockCache is an in-memory handlers.Cache
type MockCache struct {
	data map[string][]byte
}

func (c *MockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *MockCache) SetWeek(ctx context.Context, sw models.SeasonWeek, key string, data []byte) error {
	c.data[key] = data
	return nil
}

func (c *MockCache) SetCompletedWeeks(ctx context.Context, key string, data []byte) error {
	c.data[key] = data
	return nil
}

const halfTable = "weekly_predictions_std_half_ppr"

func pw(id string) models.PlayerWeek {
	return models.PlayerWeek{Season: 2024, Week: 3, PlayerID: id}
}

func sampleStore() *MockStore {
	return &MockStore{
		preds: map[string][]models.PredictionRecord{
			halfTable: {
				{PlayerWeek: pw("A"), PlayerName: "Alpha", Position: "RB", Stats: models.StatLine{
					FantasyPoints: models.Float(12), RushingYards: models.Float(120),
				}},
				{PlayerWeek: pw("B"), PlayerName: "Bravo", Position: "WR", Stats: models.StatLine{
					FantasyPoints: models.Float(8), ReceivingYards: models.Float(80),
				}},
			},
		},
		actuals: []models.WeeklyStats{
			{PlayerWeek: pw("A"), Stats: models.StatLine{RushingYards: models.Float(100)}},
			{PlayerWeek: pw("B"), Stats: models.StatLine{ReceivingYards: models.Float(100)}},
		},
	}
}

func newRouter(t *testing.T, store handlers.Store, cache handlers.Cache) http.Handler {
	t.Helper()
	registry, err := scoring.NewRegistry(scoring.DefaultRulesets()...)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	h, err := handlers.NewHandler(store, registry, handlers.Options{
		Cache: cache,
		Now:   func() time.Time { return time.Date(2024, 9, 20, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewHandler() error: %v", err)
	}
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func get(t *testing.T, router http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := get(t, newRouter(t, &MockStore{}, nil), "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	w = get(t, newRouter(t, &MockStore{shouldError: true}, nil), "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestNewHandlerRejectsUnknownRuleset(t *testing.T) {
	registry, _ := scoring.NewRegistry(scoring.DefaultRulesets()...)
	if _, err := handlers.NewHandler(&MockStore{}, registry, handlers.Options{AccuracyRuleset: "nope"}); err == nil {
		t.Error("NewHandler() accepted an unregistered accuracy ruleset")
	}
}

func TestBadSeasonWeekIsRejected(t *testing.T) {
	store := sampleStore()
	router := newRouter(t, store, nil)

	urls := []string{
		"/api/predictions/half_ppr?week=3",
		"/api/predictions/half_ppr?season=2024&week=abc",
		"/api/predictions/half_ppr?season=2024&week=3&limit=-1",
		"/api/accuracy/diffs?season=1066&week=3",
		"/api/accuracy/metrics?season=2024&week=30",
		"/api/get-prediction-accuracy?season=2024",
	}
	for _, url := range urls {
		w := get(t, router, url)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", url, w.Code)
			continue
		}
		var resp models.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("%s: failed to decode error: %v", url, err)
		}
		if resp.Code != http.StatusBadRequest || resp.Message == "" {
			t.Errorf("%s: error body %+v", url, resp)
		}
	}
	if store.calls != 0 {
		t.Errorf("store was queried %d times for malformed requests", store.calls)
	}
}

func TestGetPredictions(t *testing.T) {
	store := sampleStore()
	router := newRouter(t, store, nil)

	w := get(t, router, "/api/predictions/half_ppr?season=2024&week=3&limit=900")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.gotLimit != handlers.MaxPredictionLimit {
		t.Errorf("limit passed to store = %d, want %d", store.gotLimit, handlers.MaxPredictionLimit)
	}

	var ranked []map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&ranked); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(ranked))
	}
	if ranked[0]["player_id"] != "A" || ranked[0]["predicted_fantasy_points"] != 12.0 {
		t.Errorf("unexpected first prediction %v", ranked[0])
	}

	if w := get(t, router, "/api/predictions/half_ppr?season=2024&week=3"); w.Code != http.StatusOK || store.gotLimit != 0 {
		t.Errorf("no limit: status %d, store limit %d", w.Code, store.gotLimit)
	}
}

func TestGetPredictionsUnknownRuleset(t *testing.T) {
	w := get(t, newRouter(t, sampleStore(), nil), "/api/predictions/superflex?season=2024&week=3")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetPredictionsEmptyWeek(t *testing.T) {
	w := get(t, newRouter(t, &MockStore{}, nil), "/api/predictions/full_ppr?season=2024&week=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var ranked []interface{}
	if err := json.NewDecoder(w.Body).Decode(&ranked); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if ranked == nil || len(ranked) != 0 {
		t.Errorf("expected an empty list, got %v", ranked)
	}
}

func TestGetAccuracyMetrics(t *testing.T) {
	store := &MockStore{}
	router := newRouter(t, store, nil)

	if w := get(t, router, "/api/accuracy/metrics?season=2024&week=3"); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 without metrics, got %d", w.Code)
	}

	store.metric = &models.AccuracyMetric{Season: 2024, Week: 3, Stat: models.FantasyPoints, Metrics: models.Metrics{
		MAE: models.Float(3.5), Count: 2,
	}}
	w := get(t, router, "/api/accuracy/metrics?season=2024&week=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["MAE"] != 3.5 || resp["R_squared"] != nil || resp["stat"] != "fantasy_points" {
		t.Errorf("unexpected metric %v", resp)
	}
}

func TestGetAccuracyDiffsEmpty(t *testing.T) {
	w := get(t, newRouter(t, &MockStore{}, nil), "/api/accuracy/diffs?season=2024&week=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected an empty list, got %s", body)
	}
}

func TestGetPredictionAccuracy(t *testing.T) {
	w := get(t, newRouter(t, sampleStore(), nil), "/api/get-prediction-accuracy?season=2024&week=3")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var report models.PredictionAccuracyReport
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if report.Season != 2024 || report.Week != 3 || len(report.IndividualRecords) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if got := report.IndividualRecords[1].Diffs[models.ReceivingYards]; got != 20 {
		t.Errorf("B receiving yards diff = %v, want 20", got)
	}
	rush := report.OverallMetrics[models.RushingYards]
	if rush.MAE == nil || *rush.MAE != 10 || rush.Count != 2 {
		t.Errorf("rushing yards metrics = %+v", rush)
	}
	if len(report.OverallMetrics) != len(models.TrackedStats) {
		t.Errorf("got metrics for %d stats, want %d", len(report.OverallMetrics), len(models.TrackedStats))
	}
}

func TestAccuracyResponsesAreCached(t *testing.T) {
	store := sampleStore()
	store.weeks = []models.SeasonWeek{{Season: 2024, Week: 3}}
	cache := &MockCache{data: make(map[string][]byte)}
	router := newRouter(t, store, cache)

	for _, url := range []string{"/api/accuracy/diffs?season=2024&week=3", "/api/accuracy/completed-weeks"} {
		first := get(t, router, url)
		second := get(t, router, url)
		if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
			t.Errorf("%s: cache headers %q then %q", url, first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
		}
		if first.Body.String() != second.Body.String() {
			t.Errorf("%s: cached body differs", url)
		}
	}
	if store.calls != 2 {
		t.Errorf("store queried %d times, want 2", store.calls)
	}
	if _, ok := cache.data["numbersff:accuracy:diffs:2024:3"]; !ok {
		t.Errorf("diffs not cached under the week key: %v", cache.data)
	}
	if _, ok := cache.data["numbersff:completed-weeks"]; !ok {
		t.Errorf("completed weeks not cached under their key: %v", cache.data)
	}
}

func TestGetCurrentSeasonWeek(t *testing.T) {
	store := &MockStore{}
	router := newRouter(t, store, nil)

	if w := get(t, router, "/api/current-season-week"); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 with no schedule, got %d", w.Code)
	}
	if store.gotToday != "2024-09-20" {
		t.Errorf("today = %q", store.gotToday)
	}

	store.current = &models.SeasonWeek{Season: 2024, Week: 3}
	w := get(t, router, "/api/current-season-week")
	var sw models.SeasonWeek
	if err := json.NewDecoder(w.Body).Decode(&sw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if sw != *store.current {
		t.Errorf("current week = %+v", sw)
	}
}

func TestGetRulesets(t *testing.T) {
	w := get(t, newRouter(t, &MockStore{}, nil), "/api/rulesets")
	var info []models.RulesetInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(info) != 3 {
		t.Errorf("expected 3 rulesets, got %d", len(info))
	}
}

func TestStoreErrors(t *testing.T) {
	router := newRouter(t, &MockStore{shouldError: true}, nil)
	for _, url := range []string{
		"/api/predictions/half_ppr?season=2024&week=3",
		"/api/accuracy/diffs?season=2024&week=3",
		"/api/accuracy/completed-weeks",
		"/api/current-season-week",
	} {
		if w := get(t, router, url); w.Code != http.StatusInternalServerError {
			t.Errorf("%s: expected status 500, got %d", url, w.Code)
		}
	}
}
