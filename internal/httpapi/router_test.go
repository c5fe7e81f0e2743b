package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
	"fundfinder-engine/internal/events"
	"fundfinder-engine/internal/match"
	"fundfinder-engine/internal/store"
)

const testToken = "0123456789abcdef0123"

type fakeDir struct {
	down bool

	tags    []domain.Tag
	grants  []domain.Grant
	mentors []domain.Mentor
	links   map[domain.Kind]map[int64][]domain.Tag

	subs []store.Submission
}

var errDown = errors.New("dial tcp: connection refused")

func (f *fakeDir) err() error {
	if f.down {
		return errDown
	}
	return nil
}

func (f *fakeDir) FetchAllTags(context.Context) ([]domain.Tag, error) { return f.tags, f.err() }

func (f *fakeDir) FetchTagsByCategory(_ context.Context, cat domain.Category) ([]domain.Tag, error) {
	var out []domain.Tag
	for _, t := range f.tags {
		if t.Category == cat {
			out = append(out, t)
		}
	}
	return out, f.err()
}

func (f *fakeDir) FetchGrants(context.Context) ([]domain.Grant, error) {
	return append([]domain.Grant(nil), f.grants...), f.err()
}

func (f *fakeDir) FetchVCs(context.Context) ([]domain.VC, error) { return nil, f.err() }

func (f *fakeDir) FetchMentors(context.Context) ([]domain.Mentor, error) {
	return append([]domain.Mentor(nil), f.mentors...), f.err()
}

func (f *fakeDir) FetchTagsForCandidate(_ context.Context, kind domain.Kind, id int64) ([]domain.Tag, error) {
	return f.links[kind][id], f.err()
}

func (f *fakeDir) FetchCandidateTags(_ context.Context, kind domain.Kind) (map[int64][]domain.Tag, error) {
	return f.links[kind], f.err()
}

func (f *fakeDir) InsertSubmission(_ context.Context, s store.Submission) (store.Submission, error) {
	if f.down {
		return store.Submission{}, errDown
	}
	s.ID = int64(len(f.subs) + 1)
	s.Status = store.SubmissionPending
	s.SubmittedAt = time.Now().UTC()
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeDir) ListSubmissions(context.Context, string, int) ([]store.Submission, error) {
	return f.subs, f.err()
}

func (f *fakeDir) PingContext(context.Context) error { return f.err() }

func newDir() *fakeDir {
	seed := domain.Tag{ID: 1, Name: "Seed", Category: domain.CategoryStage}
	fintech := domain.Tag{ID: 5, Name: "Fintech", Category: domain.CategoryIndustry}
	tech := domain.Tag{ID: 3, Name: "Technology & Software", Category: domain.CategoryIndustry}
	dpiit := domain.Tag{ID: 50, Name: "DPIIT Registration", Category: domain.CategoryRequirement}
	free, pricey := domain.RateFree, domain.Rate3KTo5K

	return &fakeDir{
		tags: []domain.Tag{seed, fintech, tech, dpiit},
		grants: []domain.Grant{
			{ID: 1, Name: "Seed Fintech"},
			{ID: 2, Name: "DPIIT only", DPIITRequired: true},
		},
		mentors: []domain.Mentor{
			{ID: 7, Name: "Pricey", RateTier: &pricey},
			{ID: 8, Name: "Free", RateTier: &free},
		},
		links: map[domain.Kind]map[int64][]domain.Tag{
			domain.KindGrant:  {1: {seed, fintech}},
			domain.KindMentor: {7: {tech}, 8: {tech}},
		},
	}
}

type testServer struct {
	dir    *fakeDir
	hub    *events.Hub
	cfgVal *atomic.Value
	path   string
	h      http.Handler
}

func newServer(t *testing.T, limiter *ClientLimiter) *testServer {
	t.Helper()
	dir := newDir()
	hub := events.NewHub()

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	cfg := config.Default()
	cfg.Database.DSN = "postgres://user:secret@db/fundfinder"
	cfg.Database.Driver = config.DriverPostgres
	cfg.HTTP.CORSOrigins = []string{"http://localhost:3000"}
	require.NoError(t, config.SaveAtomic(cfgPath, cfg))

	live, err := config.Load(cfgPath)
	require.NoError(t, err)
	live, vr := config.NormalizeAndValidate(live)
	require.True(t, vr.OK(), vr.Errors)

	var cfgVal atomic.Value
	cfgVal.Store(live)

	matcher := match.NewService(dir, func() config.Matching {
		return cfgVal.Load().(config.Config).Matching
	}, nil)

	d := Deps{
		Matcher:     matcher,
		Tags:        dir,
		Submissions: dir,
		DB:          dir,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     func() (config.Config, error) { return config.Load(cfgPath) },
		AdminToken:  func() (string, error) { return testToken, nil },
		Limiter:     limiter,
	}
	return &testServer{dir: dir, hub: hub, cfgVal: &cfgVal, path: cfgPath, h: Handler(d)}
}

func (s *testServer) do(method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestGrantResults(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/grants/results?stage=1&industry=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode(t, rec)
	assert.Equal(t, "grant", body["kind"])
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 1, body["excluded"])

	results := body["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.EqualValues(t, 70, first["match_score"])
	assert.EqualValues(t, 1, first["tier"])
	assert.Equal(t, "Perfect Match", first["tier_label"])
	assert.Equal(t, []any{"Suitable for Seed stage", "Targets Fintech industry"}, first["match_reasons"])
}

func TestMentorResultsBudgetBonus(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/mentors/results?industries=Technology%20%26%20Software&budget=Free", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	results := decode(t, rec)["results"].([]any)
	require.Len(t, results, 2)
	top := results[0].(map[string]any)
	assert.EqualValues(t, 70, top["match_score"])
	assert.Equal(t, "Expertise Match", top["tier_label"])
	assert.Equal(t, "Free", top["candidate"].(map[string]any)["name"])
}

func TestEmptySelectionReturnsEmptyReasons(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/vcs/results", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)

	rec = s.do(http.MethodGet, "/grants/results?requirement=50", "", nil)
	for _, r := range decode(t, rec)["results"].([]any) {
		assert.Equal(t, []any{}, r.(map[string]any)["match_reasons"])
	}
}

func TestRepositoryFailureIs503(t *testing.T) {
	s := newServer(t, nil)
	s.dir.down = true

	for _, path := range []string{"/grants/results", "/vcs/results", "/mentors/results", "/tags"} {
		rec := s.do(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.NotContains(t, rec.Body.String(), "connection refused", path)
		e := decode(t, rec)["error"].(map[string]any)
		assert.Equal(t, "repository_unavailable", e["code"])
	}

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTagsByCategory(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/tags?category=requirement", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decode(t, rec)["tags"].([]any)
	require.Len(t, tags, 1)
	assert.Equal(t, "DPIIT Registration", tags[0].(map[string]any)["name"])

	rec = s.do(http.MethodGet, "/tags?category=colour", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodPost, "/grants/results", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSubmissions(t *testing.T) {
	s := newServer(t, nil)
	ch := s.hub.Subscribe()
	defer s.hub.Unsubscribe(ch)

	rec := s.do(http.MethodPost, "/submissions/mentors",
		`{"name":"<b>Priya</b>","bio":"<p>Ten years</p><script>x()</script>","languages":["Hindi"," "],"rate_tier":"Free"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, s.dir.subs, 1)
	sub := s.dir.subs[0]
	assert.Equal(t, domain.KindMentor, sub.Kind)
	assert.Equal(t, "Priya", sub.Name)
	assert.Equal(t, "Ten years", sub.Payload["bio"])
	assert.Equal(t, []any{"Hindi"}, sub.Payload["languages"])

	select {
	case evt := <-ch:
		assert.Contains(t, evt, events.TypeSubmissionCreated)
	case <-time.After(time.Second):
		t.Fatal("no submission event")
	}

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/submissions/mentors", `{"name":"x","rate_tier":"cheap"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/submissions/grants", `{"name":"x","application_deadline":"soon"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/submissions/vcs", `{"website":"x"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/submissions/vcs", `{"name":`, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/submissions/unicorns", `{"name":"x"}`, nil).Code)
}

func TestAdminEndpointsNeedToken(t *testing.T) {
	s := newServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/submissions", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/submissions", "", map[string]string{"X-Admin-Token": "wrong"}).Code)

	rec := s.do(http.MethodGet, "/submissions", "", map[string]string{"X-Admin-Token": testToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["submissions"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPut, "/config", `{}`, nil).Code)
}

func TestAdminDisabledWithoutToken(t *testing.T) {
	h := AdminOnly(func() (string, error) { return "", errors.New("no keychain") })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigRedactsAndPreservesDSN(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "********", cfg.Database.DSN)
	cfg.Matching.Weights.Mentor.Budget = 25

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	rec = s.do(http.MethodPut, "/config", string(b), map[string]string{"X-Admin-Token": testToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cur := s.cfgVal.Load().(config.Config)
	assert.Equal(t, 25, cur.Matching.Weights.Mentor.Budget)
	assert.Equal(t, "postgres://user:secret@db/fundfinder", cur.Database.DSN)

	cfg.Matching.Weights.Mentor.Budget = -1
	b, _ = json.Marshal(cfg)
	rec = s.do(http.MethodPut, "/config", string(b), map[string]string{"X-Admin-Token": testToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var vr config.Validation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vr))
	assert.Contains(t, vr.Errors, "matching.weights.mentor.budget must be >= 0")
	assert.Contains(t, rec.Body.String(), "must be >= 0")
}

func (s *testServer) roundTripConfig(t *testing.T, edit func(*config.Config)) config.Config {
	t.Helper()
	rec := s.do(http.MethodGet, "/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg config.Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	if edit != nil {
		edit(&cfg)
	}
	b, err := json.Marshal(cfg)
	require.NoError(t, err)

	rec = s.do(http.MethodPut, "/config", string(b), map[string]string{"X-Admin-Token": testToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return s.cfgVal.Load().(config.Config)
}

func TestConfigPutKeepsEnvValuesOutOfFile(t *testing.T) {
	t.Setenv("FUNDFINDER_DATABASE_DSN", "postgres://admin:s3cret@db/prod")
	t.Setenv("FUNDFINDER_PORT", "9300")
	s := newServer(t, nil)

	cur := s.roundTripConfig(t, func(c *config.Config) { c.Matching.Weights.VC.Location = 5 })
	assert.Equal(t, "postgres://admin:s3cret@db/prod", cur.Database.DSN)
	assert.Equal(t, 9300, cur.App.Port)
	assert.Equal(t, 5, cur.Matching.Weights.VC.Location)

	for _, p := range []string{s.path, s.path + ".bak"} {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.NotContains(t, string(b), "s3cret", p)
	}
	onDisk, err := config.LoadFile(s.path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://user:secret@db/fundfinder", onDisk.Database.DSN)
	assert.Equal(t, 38471, onDisk.App.Port)
	assert.Equal(t, 5, onDisk.Matching.Weights.VC.Location)
}

func TestConfigPutStoresNormalizedConfig(t *testing.T) {
	t.Setenv("FUNDFINDER_LOG_LEVEL", " DEBUG ")
	s := newServer(t, nil)

	cur := s.roundTripConfig(t, nil)
	assert.Equal(t, "debug", cur.App.LogLevel)
}

func TestConfigPutAppliesCorsAndRateLimit(t *testing.T) {
	limiter := NewClientLimiter(0, 0)
	s := newServer(t, limiter)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	}

	s.roundTripConfig(t, func(c *config.Config) {
		c.HTTP.CORSOrigins = []string{"https://fundfinder.example"}
		c.HTTP.RateLimitRPS = 0.001
		c.HTTP.RateLimitBurst = 2
	})

	rec := s.do(http.MethodGet, "/health", "", map[string]string{"Origin": "https://fundfinder.example"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://fundfinder.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(http.MethodGet, "/health", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodGet, "/health", "", nil).Code)
}

func TestConfigValidate(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodGet, "/config/validate", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["errors"])
}

func TestCorsPreflight(t *testing.T) {
	s := newServer(t, nil)
	rec := s.do(http.MethodOptions, "/grants/results", "", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	s := newServer(t, NewClientLimiter(0.001, 2))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil).Code)

	rec := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestClientLimiterIsPerClient(t *testing.T) {
	cl := NewClientLimiter(0.001, 1)
	assert.True(t, cl.Allow("10.0.0.1"))
	assert.False(t, cl.Allow("10.0.0.1"))
	assert.True(t, cl.Allow("10.0.0.2"))
}

func TestClientLimiterConfigure(t *testing.T) {
	cl := NewClientLimiter(0, 0)
	for i := 0; i < 10; i++ {
		assert.True(t, cl.Allow("10.0.0.1"))
	}

	cl.Configure(0.001, 1)
	assert.True(t, cl.Allow("10.0.0.1"))
	assert.False(t, cl.Allow("10.0.0.1"))

	cl.Configure(0, 0)
	assert.True(t, cl.Allow("10.0.0.1"))
}

func TestRecoverWritesJSON(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), RequestID, Recover)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}
