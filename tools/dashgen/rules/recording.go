package rules

// Recording rule names referenced by dashboards and alert rules.
const (
	RecordHTTPRequests      = "deal_notifier:http_requests:rate5m"
	RecordHTTPErrors        = "deal_notifier:http_errors:rate5m"
	RecordRuns              = "deal_notifier:runs:rate1h"
	RecordPipedriveAPICalls = "deal_notifier:pipedrive_api_calls:rate5m"
)

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   "deal-notifier-recording-rules",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "deal-notifier-recording",
					Rules: []Rule{
						{
							Record: RecordHTTPRequests,
							Expr:   `sum(rate(deal_notifier_http_requests_total[5m]))`,
						},
						{
							Record: RecordHTTPErrors,
							Expr:   `sum(rate(deal_notifier_http_requests_total{status=~"5.."}[5m]))`,
						},
						{
							Record: RecordRuns,
							Expr:   `sum by (outcome) (rate(deal_notifier_runs_total[1h]))`,
						},
						{
							Record: RecordPipedriveAPICalls,
							Expr:   `rate(deal_notifier_pipedrive_api_calls_total[5m])`,
						},
					},
				},
			},
		},
	}
}
