// Package main implements a mock Pipedrive and WhatsApp Cloud API server for
// local development. It serves deals from a JSON fixture through the
// Pipedrive v1 deals endpoint and accepts WhatsApp text messages, so the
// notifier can run end to end without real credentials.
//
// Point the daemon at it with:
//
//	pipedrive.base_url: http://localhost:8089/api/v1
//	notify.whatsapp.api_url: http://localhost:8089/v21.0
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// maxTextBody is the WhatsApp limit on a text message body.
const maxTextBody = 4096

// mockDeal is one fixture deal in the subset of Pipedrive's shape the
// notifier reads.
type mockDeal struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
}

// fixture maps Pipedrive filter IDs to the deals they match.
type fixture struct {
	Filters map[string][]mockDeal `json:"filters"`
}

type pagination struct {
	Start                 int  `json:"start"`
	Limit                 int  `json:"limit"`
	MoreItemsInCollection bool `json:"more_items_in_collection"`
	NextStart             int  `json:"next_start,omitempty"`
}

type dealsResponse struct {
	Success        bool       `json:"success"`
	Data           []mockDeal `json:"data"`
	AdditionalData struct {
		Pagination pagination `json:"pagination"`
	} `json:"additional_data"`
}

// message is a WhatsApp text message as sent to the Cloud API.
type message struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// server holds the mutable mock state: the fixture, which grows through
// POST /mock/filters/{id}/deals, and every accepted message.
type server struct {
	log *slog.Logger

	mu       sync.Mutex
	filters  map[string][]mockDeal
	nextID   int64
	messages []message
}

func newServer(logger *slog.Logger, fx *fixture) *server {
	s := &server{log: logger, filters: make(map[string][]mockDeal)}
	for id, deals := range fx.Filters {
		s.filters[id] = append([]mockDeal(nil), deals...)
		for _, d := range deals {
			s.nextID = max(s.nextID, d.ID)
		}
	}
	return s
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/deals", s.dealsHandler)
	mux.HandleFunc("POST /v21.0/{phoneID}/messages", s.messagesHandler)
	mux.HandleFunc("POST /mock/filters/{filterID}/deals", s.addDealHandler)
	mux.HandleFunc("GET /mock/messages", s.listMessagesHandler)
	return requestLogger(s.log, mux)
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/deals.json", "path to deals fixture")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "filters", len(fx.Filters))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Pipedrive/WhatsApp server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      newServer(logger, fx).routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func pipedriveError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"success":    false,
		"error":      msg,
		"error_info": "Mock Pipedrive server.",
	})
}

// dealsHandler serves GET /api/v1/deals?filter_id=&start=&limit= with
// Pipedrive's offset pagination.
func (s *server) dealsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("x-api-token") == "" && r.URL.Query().Get("api_token") == "" {
		pipedriveError(w, http.StatusUnauthorized, "You need to be authorized to make this request.")
		return
	}

	q := r.URL.Query()
	filterID := q.Get("filter_id")

	limit := 100
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, 500)
	}
	start := 0
	if v, err := strconv.Atoi(q.Get("start")); err == nil && v >= 0 {
		start = v
	}

	s.mu.Lock()
	deals, ok := s.filters[filterID]
	deals = append([]mockDeal(nil), deals...)
	s.mu.Unlock()

	if !ok {
		pipedriveError(w, http.StatusBadRequest, "Filter not found")
		return
	}

	var resp dealsResponse
	resp.Success = true
	resp.AdditionalData.Pagination = pagination{Start: start, Limit: limit}

	if start < len(deals) {
		end := min(start+limit, len(deals))
		resp.Data = deals[start:end]
		if end < len(deals) {
			resp.AdditionalData.Pagination.MoreItemsInCollection = true
			resp.AdditionalData.Pagination.NextStart = end
		}
	}
	// Pipedrive returns null data for an empty result.

	writeJSON(w, http.StatusOK, resp)
	s.log.Info("deals", "filter_id", filterID, "total", len(deals), "returned", len(resp.Data), "start", start, "limit", limit)
}

func graphError(w http.ResponseWriter, status, code int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "OAuthException",
			"code":    code,
		},
	})
}

// messagesHandler accepts POST /v21.0/{phoneID}/messages like the WhatsApp
// Cloud API and records the message.
func (s *server) messagesHandler(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		graphError(w, http.StatusUnauthorized, 190, "Invalid OAuth access token.")
		return
	}

	var msg message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		graphError(w, http.StatusBadRequest, 100, "Invalid JSON body.")
		return
	}

	switch {
	case msg.MessagingProduct != "whatsapp":
		graphError(w, http.StatusBadRequest, 100, "Param messaging_product must be whatsapp.")
		return
	case msg.To == "":
		graphError(w, http.StatusBadRequest, 100, "Param to is required.")
		return
	case msg.Type != "text":
		graphError(w, http.StatusBadRequest, 100, "Only text messages are supported by the mock.")
		return
	case msg.Text.Body == "":
		graphError(w, http.StatusBadRequest, 100, "Param text['body'] is required.")
		return
	case len([]rune(msg.Text.Body)) > maxTextBody:
		graphError(w, http.StatusBadRequest, 100, "Param text['body'] must be at most 4096 characters long.")
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	n := len(s.messages)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"messaging_product": "whatsapp",
		"contacts":          []map[string]string{{"input": msg.To, "wa_id": msg.To}},
		"messages":          []map[string]string{{"id": fmt.Sprintf("wamid.mock-%d", n)}},
	})
	s.log.Info("message", "phone_id", r.PathValue("phoneID"), "to", msg.To, "chars", len([]rune(msg.Text.Body)))
}

// addDealHandler appends a deal to a filter, creating the filter if needed,
// so a running notifier sees a new deal on its next run.
func (s *server) addDealHandler(w http.ResponseWriter, r *http.Request) {
	var d mockDeal
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		pipedriveError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	filterID := r.PathValue("filterID")

	s.mu.Lock()
	if d.ID == 0 {
		s.nextID++
		d.ID = s.nextID
	} else {
		s.nextID = max(s.nextID, d.ID)
	}
	if d.Status == "" {
		d.Status = "open"
	}
	s.filters[filterID] = append(s.filters[filterID], d)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": d})
	s.log.Info("added deal", "filter_id", filterID, "id", d.ID)
}

// listMessagesHandler returns every message accepted so far.
func (s *server) listMessagesHandler(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	msgs := append([]message{}, s.messages...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, msgs)
}
