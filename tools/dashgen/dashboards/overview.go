// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/deal-notifier/tools/dashgen/panels"
)

// OverviewUID is the stable dashboard UID, so re-imports replace the
// existing dashboard instead of duplicating it.
const OverviewUID = "deal-notifier-overview"

// BuildOverview constructs the deal-notifier overview dashboard.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("Deal Notifier Overview").
		Uid(OverviewUID).
		Tags([]string{"deal-notifier", "pipedrive", "whatsapp"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.LastSuccess()))

	b.WithRow(dashboard.NewRowBuilder("Runs").
		WithPanel(panels.RunsByOutcome()).
		WithPanel(panels.RunDuration()).
		WithPanel(panels.DealsFetched()))

	b.WithRow(dashboard.NewRowBuilder("State").
		WithPanel(panels.SentIDs()).
		WithPanel(panels.StateSaveErrors()))

	b.WithRow(dashboard.NewRowBuilder("Pipedrive").
		WithPanel(panels.APICallsRate()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.FetchErrors()).
		WithPanel(panels.LimitHits()))

	b.WithRow(dashboard.NewRowBuilder("Notifications").
		WithPanel(panels.MessagesSent()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
