package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/deal-notifier/internal/api/handlers"
	"github.com/donaldgifford/deal-notifier/internal/engine"
	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func TestPrintResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		res      *engine.Result
		want     []string
		dontWant []string
	}{
		{
			name: "reported",
			res: &engine.Result{
				RunID:          "run-1",
				Outcome:        engine.OutcomeReported,
				Fetched:        3,
				NewIDs:         []domain.DealID{"2", "3"},
				PreviouslySent: 1,
				Notified:       true,
				Duration:       1500 * time.Millisecond,
			},
			want: []string{"run-1", "reported", "2, 3", "Notified:", "true", "1.5s"},
		},
		{
			name:     "nothing new",
			res:      &engine.Result{RunID: "run-2", Outcome: engine.OutcomeNothingNew},
			want:     []string{"nothing_new", "New:"},
			dontWant: []string{"New IDs:"},
		},
		{
			name: "failed before an outcome",
			res:  &engine.Result{RunID: "run-3"},
			want: []string{"Outcome:", "-"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, printResult(&buf, tt.res))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.dontWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestPrintState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printState(&buf, &handlers.StateBody{
		IDs:            []domain.DealID{"1", "5", "8"},
		Count:          3,
		LastBatchCount: 2,
	}))
	assert.Contains(t, buf.String(), "Reported:")
	assert.Contains(t, buf.String(), "1, 5, 8")

	buf.Reset()
	require.NoError(t, printState(&buf, &handlers.StateBody{IDs: []domain.DealID{}}))
	assert.NotContains(t, buf.String(), "IDs:")
}

func TestPrintLastRun(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, printLastRun(&buf, &handlers.LastRunBody{
		Trigger:    engine.TriggerSchedule,
		FinishedAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		Error:      "delivery error: sending report: whatsapp rate limited (429)",
		ErrorKind:  "delivery",
		Result:     &engine.Result{RunID: "run-4"},
	}))

	assert.Contains(t, buf.String(), "schedule")
	assert.Contains(t, buf.String(), "(delivery)")
	assert.Contains(t, buf.String(), "run-4")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestOutputJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, outputJSON(&buf, &handlers.StateBody{IDs: []domain.DealID{"4"}, Count: 1}))
	assert.JSONEq(t, `{"ids":[4],"count":1,"last_batch_count":0}`, buf.String())
}
