package pipedrive

import (
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// dealsResponse is the Pipedrive v1 envelope for GET /deals.
type dealsResponse struct {
	Success        bool            `json:"success"`
	Data           []apiDeal       `json:"data"`
	AdditionalData *additionalData `json:"additional_data,omitempty"`
	Error          string          `json:"error,omitempty"`
	ErrorInfo      string          `json:"error_info,omitempty"`
}

type additionalData struct {
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Start                 int  `json:"start"`
	Limit                 int  `json:"limit"`
	MoreItemsInCollection bool `json:"more_items_in_collection"`
	NextStart             int  `json:"next_start"`
}

// apiDeal holds the subset of deal fields the notifier reads. ID is a pointer
// so a deal without one is rejected instead of decoding as "".
type apiDeal struct {
	ID       *domain.DealID `json:"id"`
	Title    string         `json:"title"`
	Value    float64        `json:"value"`
	Currency string         `json:"currency"`
	Status   string         `json:"status"`
}

// errorResponse is returned by Pipedrive on non-2xx responses.
type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorInfo string `json:"error_info"`
}
