package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/quick-forms/analytics"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/cache"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/metrics"
	"github.com/mbolis/quick-forms/model"
)

func newTestServer(t *testing.T, submitRate int) *httptest.Server {
	t.Helper()

	cfg := config.Config{
		DBDriver:       "sqlite3",
		DBUrl:          filepath.Join(t.TempDir(), "test.sqlite"),
		TokenSecret:    "test-secret",
		TokenTTL:       2 * time.Minute,
		Location:       time.UTC,
		ReportCacheTTL: time.Minute,
		SubmitRate:     submitRate,
		CORSOrigins:    []string{"*"},
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	require.NoError(t, db.EnsureOwner(ctx, "alice", "alice-pw"))
	require.NoError(t, db.EnsureOwner(ctx, "bob", "bob-pw"))

	srv := httptest.NewServer(Wire(app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
		Reports:      cache.NewMemory(ctx, cfg.ReportCacheTTL),
		Engine:       analytics.NewEngine(cfg.Location),
	}))
	t.Cleanup(srv.Close)
	return srv
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func login(t *testing.T, srv *httptest.Server, user, pass string) tokens {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth(user, pass)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tk tokens
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tk))
	require.NotEmpty(t, tk.AccessToken)
	return tk
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func feedbackForm() model.Form {
	return model.Form{
		Title: "Feedback",
		Fields: []model.Field{
			{ID: "rating", Type: model.TypeRadioGroup, Label: "Rating", Options: []model.FieldOption{
				{Label: "Good", Value: "good"}, {Label: "Bad", Value: "bad"},
			}, Validation: &model.FieldValidation{Required: true}},
			{ID: "comment", Type: model.TypeTextarea, Label: "Comment"},
			{ID: "age", Type: model.TypeNumberInput, Label: "Age"},
		},
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 0)

	status, body := call(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t, 0)

	status, _ := call(t, srv, http.MethodGet, "/api/forms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/login", nil)
	require.NoError(t, err)
	req.SetBasicAuth("alice", "wrong")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode)

	status, _ = call(t, srv, http.MethodPost, "/api/login", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	tk := login(t, srv, "alice", "alice-pw")
	status, _ = call(t, srv, http.MethodGet, "/api/forms", tk.AccessToken, nil)
	assert.Equal(t, http.StatusOK, status)

	t.Run("refresh", func(t *testing.T) {
		refresh := func() int {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/refresh", nil)
			require.NoError(t, err)
			req.Header.Set("authorization", "Refresh "+tk.RefreshToken)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			return resp.StatusCode
		}

		assert.Equal(t, http.StatusOK, refresh())
		// refresh tokens are single use
		assert.NotEqual(t, http.StatusOK, refresh())
	})
}

func TestFormLifecycle(t *testing.T) {
	srv := newTestServer(t, 0)
	alice := login(t, srv, "alice", "alice-pw").AccessToken
	bob := login(t, srv, "bob", "bob-pw").AccessToken

	bad := feedbackForm()
	bad.Fields[2].Type = "Slider"
	status, body := call(t, srv, http.MethodPost, "/api/forms", alice, bad)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "fields[2].type")

	status, body = call(t, srv, http.MethodPost, "/api/forms", alice, feedbackForm())
	require.Equal(t, http.StatusCreated, status)
	var created model.Form
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotZero(t, created.ID)
	assert.NotEmpty(t, created.PublicID)
	assert.Equal(t, 1, created.Version)
	path := "/api/forms/" + strconv.Itoa(created.ID)

	status, _ = call(t, srv, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodGet, "/api/forms/abc", alice, nil)
	assert.Equal(t, http.StatusNotFound, status)

	update := feedbackForm()
	update.Title = "Feedback v2"
	update.Version = created.Version
	status, body = call(t, srv, http.MethodPut, path, alice, update)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":`+strconv.Itoa(created.ID)+`,"version":2}`, string(body))

	// stale version
	status, _ = call(t, srv, http.MethodPut, path, alice, update)
	assert.Equal(t, http.StatusConflict, status)

	status, body = call(t, srv, http.MethodGet, "/api/forms", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Forms []model.FormSummary `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Forms, 1)
	assert.Equal(t, "Feedback v2", list.Forms[0].Title)

	status, body = call(t, srv, http.MethodGet, "/api/forms", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"forms":[]}`, string(body))

	status, _ = call(t, srv, http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = call(t, srv, http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = call(t, srv, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSubmissionsAndAnalytics(t *testing.T) {
	srv := newTestServer(t, 0)
	alice := login(t, srv, "alice", "alice-pw").AccessToken

	status, body := call(t, srv, http.MethodPost, "/api/forms", alice, feedbackForm())
	require.Equal(t, http.StatusCreated, status)
	var form model.Form
	require.NoError(t, json.Unmarshal(body, &form))
	path := "/api/forms/" + strconv.Itoa(form.ID)
	public := "/api/f/" + form.PublicID

	status, _ = call(t, srv, http.MethodGet, public, "", nil)
	assert.Equal(t, http.StatusNotFound, status, "unpublished forms are hidden")

	status, _ = call(t, srv, http.MethodPost, path+"/publish", alice, nil)
	require.Equal(t, http.StatusNoContent, status)

	viewsBefore := testutil.ToFloat64(metrics.Views)
	for i := 0; i < 4; i++ {
		status, body = call(t, srv, http.MethodGet, public, "", nil)
		require.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, viewsBefore+4, testutil.ToFloat64(metrics.Views))
	assert.Contains(t, string(body), `"title":"Feedback"`)
	assert.NotContains(t, string(body), "alice")

	submit := func(answers string) (int, []byte) {
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(`{"answers":`+answers+`}`), &payload))
		return call(t, srv, http.MethodPost, public+"/submissions", "", payload)
	}

	status, body = submit(`[{"fieldId":"comment","value":"hello"}]`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), `"answers.rating":"is required"`)

	status, _ = submit(`[{"fieldId":"rating","value":"meh"}]`)
	assert.Equal(t, http.StatusBadRequest, status)

	submissionsBefore := testutil.ToFloat64(metrics.Submissions)
	status, body = submit(`[{"fieldId":"rating","value":"good"},{"fieldId":"comment","value":"Great service, great people"},{"fieldId":"age","value":30}]`)
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, string(body), `"id":`)
	status, _ = submit(`[{"fieldId":"rating","value":"bad"},{"fieldId":"age","value":"50"}]`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, submissionsBefore+2, testutil.ToFloat64(metrics.Submissions))

	status, body = call(t, srv, http.MethodGet, path+"/submissions", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var subs struct {
		Submissions []model.Submission `json:"submissions"`
	}
	require.NoError(t, json.Unmarshal(body, &subs))
	assert.Len(t, subs.Submissions, 2)

	status, body = call(t, srv, http.MethodGet, path+"/analytics", alice, nil)
	require.Equal(t, http.StatusOK, status)
	var report analytics.Report
	require.NoError(t, json.Unmarshal(body, &report))

	assert.Equal(t, 4, report.Views)
	assert.Equal(t, 2, report.Submissions)
	assert.Equal(t, 0.5, report.CompletionRate)
	assert.Equal(t, analytics.Funnel{Views: 4, Submissions: 2}, report.Funnel)

	require.Len(t, report.SubmissionTrend, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), report.SubmissionTrend[0].Date)
	assert.Equal(t, 2, report.SubmissionTrend[0].Count)

	require.Len(t, report.FieldAnalytics, 1)
	assert.Equal(t, []analytics.OptionCount{{Option: "good", Count: 1}, {Option: "bad", Count: 1}}, report.FieldAnalytics[0].Options)

	require.Len(t, report.TextAnalytics, 1)
	require.NotEmpty(t, report.TextAnalytics[0].WordFrequencies)
	assert.Equal(t, analytics.WordCount{Word: "great", Count: 2}, report.TextAnalytics[0].WordFrequencies[0])

	require.Len(t, report.NumericAnalytics, 1)
	assert.Equal(t, 2, report.NumericAnalytics[0].Stats.Count)
	assert.Equal(t, 40.0, report.NumericAnalytics[0].Stats.Mean)

	t.Run("cached", func(t *testing.T) {
		hits := testutil.ToFloat64(metrics.ReportCacheRequests.WithLabelValues("hit"))
		status, again := call(t, srv, http.MethodGet, path+"/analytics", alice, nil)
		require.Equal(t, http.StatusOK, status)
		assert.JSONEq(t, string(body), string(again))
		assert.Equal(t, hits+1, testutil.ToFloat64(metrics.ReportCacheRequests.WithLabelValues("hit")))
	})

	t.Run("date range", func(t *testing.T) {
		status, body := call(t, srv, http.MethodGet, path+"/analytics?from=2000-01-01&to=2000-12-31", alice, nil)
		require.Equal(t, http.StatusOK, status)
		var empty analytics.Report
		require.NoError(t, json.Unmarshal(body, &empty))
		assert.Zero(t, empty.Submissions)
		assert.Zero(t, empty.Views)
		assert.Empty(t, empty.SubmissionTrend)

		today := time.Now().UTC().Format("2006-01-02")
		status, body = call(t, srv, http.MethodGet, path+"/submissions?from="+today+"&to="+today, alice, nil)
		require.Equal(t, http.StatusOK, status)
		var subs struct {
			Submissions []model.Submission `json:"submissions"`
		}
		require.NoError(t, json.Unmarshal(body, &subs))
		assert.Len(t, subs.Submissions, 2)
	})

	t.Run("bad date range", func(t *testing.T) {
		for _, q := range []string{"?from=yesterday", "?to=2024-13-01", "?from=2024-02-01&to=2024-01-01"} {
			status, _ := call(t, srv, http.MethodGet, path+"/analytics"+q, alice, nil)
			assert.Equal(t, http.StatusBadRequest, status, q)
		}
	})

	t.Run("unpublish", func(t *testing.T) {
		status, _ := call(t, srv, http.MethodPost, path+"/unpublish", alice, nil)
		require.Equal(t, http.StatusNoContent, status)
		status, _ = call(t, srv, http.MethodGet, public, "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}

func TestPublicRateLimit(t *testing.T) {
	srv := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		status, _ := call(t, srv, http.MethodGet, "/api/f/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, status, "request %d", i)
	}
	status, _ := call(t, srv, http.MethodGet, "/api/f/missing", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	status, _ = call(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status, "ops endpoints are not limited")
}

func TestPublicRateLimitIgnoresForwardedFor(t *testing.T) {
	srv := newTestServer(t, 2)

	get := func(forwarded string) int {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/f/missing", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusNotFound, get("203.0.113.1"))
	assert.Equal(t, http.StatusNotFound, get("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, get("203.0.113.3"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, 0)

	status, body := call(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "forms_submissions_total")
}

func TestDateRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2024-01-01&to=2024-01-31", nil)
	rng, err := dateRange(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), rng.From)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC), rng.To)

	req = httptest.NewRequest(http.MethodGet, "/?to=2024-01-31T12:00:00Z", nil)
	rng, err = dateRange(req)
	require.NoError(t, err)
	assert.True(t, rng.From.IsZero())
	assert.Equal(t, time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC), rng.To)

	req = httptest.NewRequest(http.MethodGet, "/?from=2024-02-01&to=2024-01-01", nil)
	_, err = dateRange(req)
	assert.ErrorIs(t, err, errRangeOrder)
}
