package main

import "errors"

// KnownMetrics is the set of metric names exported by deal-notifier plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"deal_notifier_http_request_duration_seconds": true,
	"deal_notifier_http_requests_total":           true,

	// Health metrics.
	"deal_notifier_healthz_up": true,
	"deal_notifier_readyz_up":  true,

	// Run metrics.
	"deal_notifier_runs_total":                     true,
	"deal_notifier_run_duration_seconds":           true,
	"deal_notifier_deals_fetched":                  true,
	"deal_notifier_new_deals_total":                true,
	"deal_notifier_last_success_timestamp_seconds": true,

	// Pipedrive metrics.
	"deal_notifier_fetch_errors_total":               true,
	"deal_notifier_pipedrive_api_calls_total":        true,
	"deal_notifier_pipedrive_daily_usage":            true,
	"deal_notifier_pipedrive_daily_limit_hits_total": true,

	// Notification metrics.
	"deal_notifier_notifications_sent_total":      true,
	"deal_notifier_notification_failures_total":   true,
	"deal_notifier_notification_duration_seconds": true,

	// State metrics.
	"deal_notifier_state_sent_ids":          true,
	"deal_notifier_state_save_errors_total": true,

	// Recording rules.
	"deal_notifier:http_requests:rate5m":       true,
	"deal_notifier:http_errors:rate5m":         true,
	"deal_notifier:runs:rate1h":                true,
	"deal_notifier:pipedrive_api_calls:rate5m": true,

	// Standard Prometheus metrics referenced in alerts.
	"up": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into
// ../../deploy (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
