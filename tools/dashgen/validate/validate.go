// Package validate checks generated dashboards and rule files before they
// are written: every PromQL expression must parse and every metric it
// selects must be one the daemon exports or a rule records.
package validate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/prometheus/common/model"
	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/promql/parser"
)

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// histogramSuffixes are the series suffixes a histogram exports alongside
// its base name.
var histogramSuffixes = []string{"_bucket", "_count", "_sum"}

// Result collects validation findings. Errors fail generation, warnings
// are reported but do not.
type Result struct {
	Errors   []string
	Warnings []string
}

// Ok reports whether validation found no errors.
func (r Result) Ok() bool {
	return len(r.Errors) == 0
}

func (r *Result) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends the findings of other to r.
func (r *Result) Merge(other Result) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Expr parses a single PromQL expression and checks the metrics it selects
// against known. where identifies the expression in findings.
func Expr(where, expr string, known map[string]bool) Result {
	var res Result

	parsed, err := parser.ParseExpr(expr)
	if err != nil {
		res.errorf("%s: invalid PromQL %q: %v", where, expr, err)
		return res
	}

	parser.Inspect(parsed, func(node parser.Node, _ []parser.Node) error {
		vs, ok := node.(*parser.VectorSelector)
		if !ok {
			return nil
		}
		name := selectorName(vs)
		if name == "" {
			res.warnf("%s: selector %s has no metric name", where, vs.String())
			return nil
		}
		if !isKnown(name, known) {
			res.errorf("%s: unknown metric %q", where, name)
		}
		return nil
	})

	return res
}

func selectorName(vs *parser.VectorSelector) string {
	if vs.Name != "" {
		return vs.Name
	}
	for _, m := range vs.LabelMatchers {
		if m.Name == labels.MetricName && m.Type == labels.MatchEqual {
			return m.Value
		}
	}
	return ""
}

func isKnown(name string, known map[string]bool) bool {
	if known[name] {
		return true
	}
	for _, suffix := range histogramSuffixes {
		if base, ok := strings.CutSuffix(name, suffix); ok && known[base] {
			return true
		}
	}
	return false
}

// panelJSON is the subset of the dashboard JSON model walked for targets.
// Rows nest their panels, so the walk is recursive.
type panelJSON struct {
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Panels  []panelJSON `json:"panels"`
	Targets []struct {
		Expr  string `json:"expr"`
		RefID string `json:"refId"`
	} `json:"targets"`
}

// Dashboard validates every query target of a built dashboard.
func Dashboard(dash dashboard.Dashboard, known map[string]bool) Result {
	var res Result

	data, err := json.Marshal(dash)
	if err != nil {
		res.errorf("encoding dashboard: %v", err)
		return res
	}

	var doc struct {
		Panels []panelJSON `json:"panels"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.errorf("decoding dashboard: %v", err)
		return res
	}

	for _, p := range doc.Panels {
		res.Merge(panel(p, known))
	}
	return res
}

func panel(p panelJSON, known map[string]bool) Result {
	var res Result

	if p.Type == "row" {
		for _, child := range p.Panels {
			res.Merge(panel(child, known))
		}
		return res
	}

	if len(p.Targets) == 0 {
		res.warnf("panel %q: no query targets", p.Title)
		return res
	}

	seen := make(map[string]bool, len(p.Targets))
	for _, t := range p.Targets {
		if t.RefID != "" {
			if seen[t.RefID] {
				res.errorf("panel %q: duplicate refId %q", p.Title, t.RefID)
			}
			seen[t.RefID] = true
		}
		res.Merge(Expr(fmt.Sprintf("panel %q target %s", p.Title, t.RefID), t.Expr, known))
	}
	return res
}

// RuleSpec is the subset of a rule that validation looks at.
type RuleSpec struct {
	Record string
	Alert  string
	Expr   string
	For    string
}

// Rules validates recording and alerting rules: names, expressions, and
// pending durations.
func Rules(rules []RuleSpec, known map[string]bool) Result {
	var res Result

	names := make(map[string]bool, len(rules))
	for _, r := range rules {
		name := r.Record
		switch {
		case r.Record != "" && r.Alert != "":
			res.errorf("rule %q: both record and alert set", r.Record)
			continue
		case r.Record != "":
			if !metricNameRE.MatchString(r.Record) {
				res.errorf("rule %q: invalid metric name", r.Record)
			}
		case r.Alert != "":
			name = r.Alert
		default:
			res.errorf("rule with expr %q: neither record nor alert set", r.Expr)
			continue
		}

		if names[name] {
			res.errorf("rule %q: defined more than once", name)
		}
		names[name] = true

		if r.For != "" {
			if _, err := model.ParseDuration(r.For); err != nil {
				res.errorf("rule %q: invalid for %q: %v", name, r.For, err)
			}
		}

		res.Merge(Expr("rule "+name, r.Expr, known))
	}

	sort.Strings(res.Errors)
	return res
}
