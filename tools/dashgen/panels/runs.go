package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// RunsByOutcome returns a timeseries panel showing report runs per hour,
// split by outcome (reported, nothing_new, dry_run, <kind>_error).
func RunsByOutcome() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Runs / hour").
		Description("Report runs per hour by outcome").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`deal_notifier:runs:rate1h * 3600`, "{{outcome}}", "A")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleBars)
}

// RunDuration returns a timeseries panel showing the p95 run duration.
func RunDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Run Duration (p95)").
		Description("95th percentile duration of a full fetch, notify, and record cycle").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(quantile(0.95, "deal_notifier_run_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// DealsFetched returns a timeseries panel showing the filter size next to
// the new deal IDs reported.
func DealsFetched() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Deals").
		Description("Deals returned by the filter and new deal IDs reported").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`deal_notifier_deals_fetched{`+Job+`}`, "in filter", "A")).
		WithTarget(PromQuery(`increase(deal_notifier_new_deals_total{`+Job+`}[1h])`, "new / hour", "B")).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("last", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// SentIDs returns a stat panel showing how many deal IDs are recorded as
// already notified.
func SentIDs() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Recorded Deal IDs").
		Description("Deal IDs recorded in the notification state").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(12).
		WithTarget(PromQuery(`deal_notifier_state_sent_ids{`+Job+`}`, "", "A")).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemeThresholds()).
		GraphMode(common.BigValueGraphModeArea)
}

// StateSaveErrors returns a stat panel showing state commits that failed
// after a delivered notification. Each one means IDs will be re-sent.
func StateSaveErrors() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("State Save Errors (24h)").
		Description("Failed state commits after a delivered notification in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(12).
		WithTarget(PromQuery(`increase(deal_notifier_state_save_errors_total{`+Job+`}[24h])`, "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}
