package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/deal-notifier/internal/state"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// StateHandler handles GET /api/v1/state.
type StateHandler struct {
	store state.Store
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(s state.Store) *StateHandler {
	return &StateHandler{store: s}
}

// StateBody is the persisted notification state in display order.
type StateBody struct {
	IDs            []domain.DealID `json:"ids" doc:"Every reported deal ID"`
	Count          int             `json:"count" example:"12" doc:"Number of reported deal IDs"`
	LastBatchCount int             `json:"last_batch_count" example:"3" doc:"Size of the most recent report"`
}

// StateOutput is the response for GET /api/v1/state.
type StateOutput struct {
	Body StateBody
}

// GetState returns what has been reported so far.
func (h *StateHandler) GetState(ctx context.Context, _ *struct{}) (*StateOutput, error) {
	st, err := h.store.Load(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to load state")
	}

	ids := st.SentIDs.Sorted()
	if ids == nil {
		ids = []domain.DealID{}
	}
	return &StateOutput{Body: StateBody{
		IDs:            ids,
		Count:          len(ids),
		LastBatchCount: st.LastBatchCount,
	}}, nil
}

// RegisterStateRoutes registers the state route on the Huma API.
func RegisterStateRoutes(api huma.API, h *StateHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get notification state",
		Description: "Returns the reported deal IDs and the size of the last report.",
		Tags:        []string{"state"},
	}, h.GetState)
}
