package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/deal-notifier/internal/engine"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// RunTrigger runs report cycles on demand and remembers the last one.
// *engine.Scheduler implements it.
type RunTrigger interface {
	Trigger(ctx context.Context) (*engine.Result, error)
	LastResult() (engine.LastRun, bool)
}

// RunHandler handles manual run requests and last-run queries.
type RunHandler struct {
	trigger RunTrigger
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(t RunTrigger) *RunHandler {
	return &RunHandler{trigger: t}
}

// RunOutput is the response body for a manual run.
type RunOutput struct {
	Body *engine.Result
}

// Run executes one report cycle and returns its result.
func (h *RunHandler) Run(ctx context.Context, _ *struct{}) (*RunOutput, error) {
	res, err := h.trigger.Trigger(ctx)
	if err != nil {
		return nil, runError(err)
	}
	return &RunOutput{Body: res}, nil
}

// runError maps run failures onto HTTP statuses: upstream failures are 502,
// local failures 500.
func runError(err error) error {
	if errors.Is(err, engine.ErrRunInProgress) {
		return huma.Error409Conflict("a run is already in progress")
	}

	msg := "run failed: " + publicError(err)
	switch domain.KindOf(err) {
	case domain.KindFetch, domain.KindDelivery:
		return huma.Error502BadGateway(msg)
	default:
		return huma.Error500InternalServerError(msg)
	}
}

// publicError is the text of err safe to return to API clients. Upstream
// failures pass through. Local failures can name state file paths or
// database details, so clients get a fixed message and the cause stays in
// the run log under the run ID.
func publicError(err error) string {
	switch domain.KindOf(err) {
	case domain.KindFetch, domain.KindDelivery:
		return err.Error()
	case domain.KindStorage:
		return "could not load or save notification state, see the server log"
	default:
		return "internal error, see the server log"
	}
}

// LastRunBody describes the most recent finished run.
type LastRunBody struct {
	Trigger    string         `json:"trigger" example:"schedule" doc:"What started the run"`
	FinishedAt time.Time      `json:"finished_at" doc:"When the run finished"`
	Error      string         `json:"error,omitempty" doc:"Failure, if the run failed"`
	ErrorKind  string         `json:"error_kind,omitempty" example:"delivery" doc:"Failure class"`
	Result     *engine.Result `json:"result,omitempty" doc:"Run result, filled up to the failing step"`
}

// LastRunOutput is the response body for the last-run endpoint.
type LastRunOutput struct {
	Body LastRunBody
}

// LastRun returns the most recent finished run, or 404 before the first one.
func (h *RunHandler) LastRun(_ context.Context, _ *struct{}) (*LastRunOutput, error) {
	last, ok := h.trigger.LastResult()
	if !ok {
		return nil, huma.Error404NotFound("no run has finished yet")
	}

	out := &LastRunOutput{Body: LastRunBody{
		Trigger:    last.Trigger,
		FinishedAt: last.FinishedAt,
		Result:     last.Result,
	}}
	if last.Err != nil {
		out.Body.Error = publicError(last.Err)
		out.Body.ErrorKind = domain.KindOf(last.Err).String()
	}
	return out, nil
}

// RegisterRunRoutes registers run endpoints with the Huma API.
func RegisterRunRoutes(api huma.API, h *RunHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "trigger-run",
		Method:      http.MethodPost,
		Path:        "/api/v1/run",
		Summary:     "Trigger a report run",
		Description: "Fetches the deal filter, notifies the recipient about new deal IDs, " +
			"and records them. Fails with 409 while another run is executing.",
		Tags: []string{"runs"},
		Errors: []int{
			http.StatusConflict,
			http.StatusInternalServerError,
			http.StatusBadGateway,
		},
	}, h.Run)

	huma.Register(api, huma.Operation{
		OperationID: "get-last-run",
		Method:      http.MethodGet,
		Path:        "/api/v1/last-run",
		Summary:     "Get the last run",
		Description: "Returns the most recent finished run, scheduled or manual.",
		Tags:        []string{"runs"},
		Errors:      []int{http.StatusNotFound},
	}, h.LastRun)
}
