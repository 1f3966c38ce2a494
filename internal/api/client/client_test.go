package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
	"github.com/donaldgifford/deal-notifier/internal/engine"
	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

type stubTrigger struct {
	result *engine.Result
	err    error
	last   *engine.LastRun
}

func (s *stubTrigger) Trigger(_ context.Context) (*engine.Result, error) {
	return s.result, s.err
}

func (s *stubTrigger) LastResult() (engine.LastRun, bool) {
	if s.last == nil {
		return engine.LastRun{}, false
	}
	return *s.last, true
}

// newDaemon serves the real API routes over HTTP.
func newDaemon(t *testing.T, trig handlers.RunTrigger, store state.Store) *Client {
	t.Helper()

	e := echo.New()
	api := humaecho.New(e, huma.DefaultConfig("deal-notifier test", "test"))
	handlers.RegisterRunRoutes(api, handlers.NewRunHandler(trig))
	handlers.RegisterStateRoutes(api, handlers.NewStateHandler(store))

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	return New(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.GetState(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{
			name:       "problem detail",
			body:       `{"title":"Internal Server Error","status":500,"detail":"failed to load state"}`,
			wantDetail: "failed to load state",
		},
		{
			name:       "problem title only",
			body:       `{"title":"Internal Server Error","status":500}`,
			wantDetail: "Internal Server Error",
		},
		{
			name:       "plain body",
			body:       "upstream exploded\n",
			wantDetail: "upstream exploded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GetState(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Contains(t, err.Error(), "API error (HTTP 500)")
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ids":`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).GetState(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_GetState(t *testing.T) {
	t.Parallel()

	store := state.NewMemoryStore(state.WithSeed(&domain.NotificationState{
		SentIDs:        domain.NewIDSet("3", "1", "2"),
		LastBatchCount: 1,
	}))
	c := newDaemon(t, &stubTrigger{}, store)

	st, err := c.GetState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.DealID{"1", "2", "3"}, st.IDs)
	assert.Equal(t, 3, st.Count)
	assert.Equal(t, 1, st.LastBatchCount)
}

func TestClient_TriggerRun(t *testing.T) {
	t.Parallel()

	trig := &stubTrigger{result: &engine.Result{
		RunID:          "run-9",
		Outcome:        engine.OutcomeReported,
		Fetched:        4,
		NewIDs:         []domain.DealID{"4"},
		PreviouslySent: 3,
		Notified:       true,
	}}
	c := newDaemon(t, trig, state.NewMemoryStore())

	res, err := c.TriggerRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "run-9", res.RunID)
	assert.Equal(t, engine.OutcomeReported, res.Outcome)
	assert.Equal(t, []domain.DealID{"4"}, res.NewIDs)
	assert.True(t, res.Notified)
}

func TestClient_TriggerRun_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "conflict", err: engine.ErrRunInProgress, wantStatus: http.StatusConflict},
		{
			name:       "delivery",
			err:        domain.NewError(domain.KindDelivery, "sending report", errors.New("rejected")),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newDaemon(t, &stubTrigger{err: tt.err}, state.NewMemoryStore())

			_, err := c.TriggerRun(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, StatusOf(err))
		})
	}
}

func TestClient_GetLastRun(t *testing.T) {
	t.Parallel()

	c := newDaemon(t, &stubTrigger{}, state.NewMemoryStore())
	_, err := c.GetLastRun(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	c = newDaemon(t, &stubTrigger{last: &engine.LastRun{
		Trigger: engine.TriggerSchedule,
		Result:  &engine.Result{RunID: "run-1", Outcome: engine.OutcomeNothingNew},
		Err:     domain.NewError(domain.KindStorage, "saving state", errors.New("disk full")),
	}}, state.NewMemoryStore())

	last, err := c.GetLastRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.TriggerSchedule, last.Trigger)
	assert.Equal(t, "storage", last.ErrorKind)
	assert.Contains(t, last.Error, "disk full")
	require.NotNil(t, last.Result)
	assert.Equal(t, "run-1", last.Result.RunID)
}

func TestStatusOf_NonAPIError(t *testing.T) {
	t.Parallel()

	assert.Zero(t, StatusOf(errors.New("boom")))
	assert.Zero(t, StatusOf(nil))
}
