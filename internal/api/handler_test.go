package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EventSync/internal/model"
	"EventSync/internal/repository"
	"EventSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func init() { gin.SetMode(gin.TestMode) }

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type runnerFunc func(ctx context.Context) (*model.ScrapeRunResult, error)

func (f runnerFunc) Run(ctx context.Context) (*model.ScrapeRunResult, error) { return f(ctx) }

// listRepo 只读查询用的最小存储
type listRepo struct {
	events []*model.Event
}

func (r *listRepo) FindByTitle(context.Context, string) (*model.Event, error) { return nil, nil }
func (r *listRepo) Create(context.Context, *model.Event) error                { return nil }
func (r *listRepo) Update(context.Context, *model.Event) error                { return nil }
func (r *listRepo) UpsertByTitle(context.Context, *model.Event) (bool, error) { return false, nil }
func (r *listRepo) Count(context.Context) (int64, error)                      { return int64(len(r.events)), nil }

func (r *listRepo) List(_ context.Context, page, pageSize int) ([]*model.Event, int64, error) {
	return r.events, int64(len(r.events)), nil
}

func (r *listRepo) GetByUUID(_ context.Context, id string) (*model.Event, error) {
	for _, e := range r.events {
		if e.EventUUID == id {
			return e, nil
		}
	}
	return nil, repository.ErrEventNotFound
}

func newTestRouter(runner ScrapeRunner, repo *listRepo) *gin.Engine {
	logger := testLogger()
	return NewRouter(
		NewSyncHandler(runner, logger),
		NewEventHandler(service.NewEventService(repo, logger), logger),
		false,
	)
}

func do(t *testing.T, r http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestSyncEvents_OK(t *testing.T) {
	runner := runnerFunc(func(context.Context) (*model.ScrapeRunResult, error) {
		res := model.NewScrapeRunResult(testNow)
		res.AddItem(&model.EventRecord{Title: "HackX", Link: "https://reskilll.com/events/hackx"}, &model.Event{ID: 7, EventUUID: "u-1"}, true)
		res.AddItem(&model.EventRecord{Title: "HackY", Link: "https://reskilll.com/allhacks"}, &model.Event{ID: 8, EventUUID: "u-2"}, false)
		res.AddSiteError("devfolio", "https://devfolio.co/hackathons", errors.New("timeout"))
		return res, nil
	})
	r := newTestRouter(runner, &listRepo{})

	for _, method := range []string{http.MethodPost, http.MethodGet} {
		w, body := do(t, r, method, "/sync/events")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 200, body["status"])
		assert.Equal(t, "Successfully scraped 2 events. Found 1 new events!", body["message"])
		assert.EqualValues(t, 2, body["total_event_count"])
		assert.EqualValues(t, 1, body["new_event_count"])
		assert.EqualValues(t, 0, body["persist_error_count"])

		events := body["events"].([]interface{})
		require.Len(t, events, 2)
		first := events[0].(map[string]interface{})
		assert.Equal(t, "HackX", first["title"])
		assert.Equal(t, true, first["newly_created"])
		assert.Equal(t, "u-1", first["event_uuid"])

		siteErrors := body["site_errors"].([]interface{})
		require.Len(t, siteErrors, 1)
		assert.Equal(t, "devfolio", siteErrors[0].(map[string]interface{})["site"])
		assert.Empty(t, body["zero_result_sites"])
	}
}

func TestSyncEvents_Failure(t *testing.T) {
	runner := runnerFunc(func(context.Context) (*model.ScrapeRunResult, error) {
		return nil, errors.New("boom")
	})
	w, body := do(t, newTestRouter(runner, &listRepo{}), http.MethodPost, "/sync/events")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "boom", body["error"])
}

func TestSyncEvents_ClientDisconnectDoesNotCancelRun(t *testing.T) {
	var runErr error
	runner := runnerFunc(func(ctx context.Context) (*model.ScrapeRunResult, error) {
		runErr = ctx.Err()
		return model.NewScrapeRunResult(testNow), nil
	})
	r := newTestRouter(runner, &listRepo{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sync/events", nil).WithContext(ctx)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, runErr)
}

func TestEventsAPI(t *testing.T) {
	repo := &listRepo{events: []*model.Event{{ID: 2, EventUUID: "u-2", Title: "B"}, {ID: 1, EventUUID: "u-1", Title: "A"}}}
	r := newTestRouter(runnerFunc(nil), repo)

	w, body := do(t, r, http.MethodGet, "/api/events?page_size=1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, body["count"])
	assert.EqualValues(t, 100, body["page_size"])
	results := body["results"].([]interface{})
	require.Len(t, results, 2)
	assert.Equal(t, "unknown", results[0].(map[string]interface{})["registration_status"])

	w, body = do(t, r, http.MethodGet, "/api/events/u-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "A", body["title"])

	w, _ = do(t, r, http.MethodGet, "/api/events/missing")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(runnerFunc(nil), &listRepo{})

	w, body := do(t, r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	w, _ = do(t, r, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
}
