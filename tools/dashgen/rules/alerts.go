package rules

import "fmt"

// pipedriveDailyLimit mirrors the daemon's default daily API budget.
const pipedriveDailyLimit = 10000

// AlertRules returns a PrometheusRule CR containing alert rules for
// deal-notifier operational monitoring.
func AlertRules() PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   "deal-notifier-alerts",
			Labels: ruleLabels(),
		},
		Spec: PrometheusRuleSpec{
			Groups: []RuleGroup{
				{
					Name: "deal-notifier-alerts",
					Rules: []Rule{
						{
							Alert:  "DealNotifierDown",
							Expr:   `absent(up{job="deal-notifier"})`,
							For:    "5m",
							Labels: severity("critical"),
							Annotations: map[string]string{
								"summary":     "Deal notifier is down",
								"description": "The deal-notifier job has been absent for more than 5 minutes.",
							},
						},
						{
							Alert:  "DealNotifierNotReady",
							Expr:   `deal_notifier_readyz_up == 0`,
							For:    "5m",
							Labels: severity("critical"),
							Annotations: map[string]string{
								"summary":     "Deal notifier cannot reach its state store",
								"description": "The readiness probe has been failing for more than 5 minutes.",
							},
						},
						{
							Alert:  "DealNotifierNoSuccessfulRun",
							Expr:   `time() - deal_notifier_last_success_timestamp_seconds > 6 * 3600`,
							For:    "10m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "No successful deal report in 6 hours",
								"description": "Every run in the last 6 hours failed to fetch, notify, or record.",
							},
						},
						{
							Alert:  "DealNotifierFetchErrors",
							Expr:   `increase(deal_notifier_fetch_errors_total[1h]) > 2`,
							For:    "0m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Pipedrive fetches are failing",
								"description": "More than two deal fetches failed in the last hour.",
							},
						},
						{
							Alert:  "DealNotifierPipedriveQuotaHigh",
							Expr:   fmt.Sprintf(`deal_notifier_pipedrive_daily_usage > %d`, pipedriveDailyLimit*8/10),
							For:    "5m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary": "Pipedrive API daily usage is above 80% of the budget",
								"description": fmt.Sprintf(
									"Daily Pipedrive API usage has exceeded %d calls (budget is %d).",
									pipedriveDailyLimit*8/10, pipedriveDailyLimit,
								),
							},
						},
						{
							Alert:  "DealNotifierPipedriveLimitReached",
							Expr:   `increase(deal_notifier_pipedrive_daily_limit_hits_total[5m]) > 0`,
							For:    "0m",
							Labels: severity("critical"),
							Annotations: map[string]string{
								"summary":     "Pipedrive API daily budget has been reached",
								"description": "Runs fail with a fetch error until the rolling 24h window frees calls.",
							},
						},
						{
							Alert:  "DealNotifierNotificationFailures",
							Expr:   `increase(deal_notifier_notification_failures_total[15m]) > 0`,
							For:    "1m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Notification delivery failures detected",
								"description": "One or more WhatsApp messages failed to send. Affected deal IDs will be retried next run.",
							},
						},
						{
							Alert:  "DealNotifierStateSaveErrors",
							Expr:   `increase(deal_notifier_state_save_errors_total[1h]) > 0`,
							For:    "0m",
							Labels: severity("warning"),
							Annotations: map[string]string{
								"summary":     "Notification state could not be saved",
								"description": "A report was delivered but not recorded, so its deal IDs will be sent again.",
							},
						},
					},
				},
			},
		},
	}
}

func severity(s string) map[string]string {
	return map[string]string{"severity": s}
}
