package cmd

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/deal-notifier/internal/config"
	"github.com/donaldgifford/deal-notifier/pkg/logger"
)

// testConfig loads a config from env-style values on top of a log backend
// and a file store in a temp dir.
func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()

	base := map[string]string{
		"PIPEDRIVE_API_KEY":   "test-token",
		"PIPEDRIVE_FILTER_ID": "42",
		"WHATSAPP_RECIPIENT":  "+55 (11) 99999-8888",
		"NOTIFY_BACKEND":      config.BackendLog,
		"STATE_PATH":          filepath.Join(t.TempDir(), "sent_ids.json"),
	}
	for k, v := range env {
		base[k] = v
	}

	cfg, err := config.LoadWithLookup("", func(key string) (string, bool) {
		v, ok := base[key]
		return v, ok
	})
	require.NoError(t, err)
	return cfg
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.NewWithWriter(&buf, "info", "text"), &buf
}

// pipedriveServer serves one page with the given JSON deal list, or the
// given status when it is not 200.
func pipedriveServer(t *testing.T, status int, data string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/deals" || r.Header.Get("x-api-token") != "test-token" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"success":false,"error":"upstream trouble"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":` + data +
			`,"additional_data":{"pagination":{"start":0,"limit":100,"more_items_in_collection":false}}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
