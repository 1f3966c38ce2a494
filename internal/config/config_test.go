package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

func envLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func requiredEnv() map[string]string {
	return map[string]string{
		"PIPEDRIVE_API_KEY":        "pd-token",
		"PIPEDRIVE_FILTER_ID":      "42",
		"WHATSAPP_RECIPIENT":       "+55 11 99999-9999",
		"WHATSAPP_TOKEN":           "wa-token",
		"WHATSAPP_PHONE_NUMBER_ID": "1234567890",
	}
}

func withEnv(base map[string]string, kv ...string) map[string]string {
	out := make(map[string]string, len(base)+len(kv)/2)
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

func without(base map[string]string, keys ...string) map[string]string {
	out := withEnv(base)
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		yaml      string
		env       map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "environment only",
			env:  requiredEnv(),
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "pd-token", cfg.Pipedrive.APIToken)
				assert.Equal(t, "42", cfg.Pipedrive.FilterID)
				assert.Equal(t, "+5511999999999", cfg.Notify.Recipient)
				assert.Equal(t, "wa-token", cfg.Notify.WhatsApp.Token)
			},
		},
		{
			name: "defaults applied for optional fields",
			env:  requiredEnv(),
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "https://api.pipedrive.com/api/v1", cfg.Pipedrive.BaseURL)
				assert.Equal(t, 100, cfg.Pipedrive.PageSize)
				assert.Equal(t, 20, cfg.Pipedrive.MaxPages)
				assert.Equal(t, 30*time.Second, cfg.Pipedrive.Timeout)
				assert.InDelta(t, 2.0, cfg.Pipedrive.RateLimit.PerSecond, 0)
				assert.Equal(t, 5, cfg.Pipedrive.RateLimit.Burst)
				assert.Equal(t, int64(10000), cfg.Pipedrive.RateLimit.DailyLimit)
				assert.Equal(t, BackendWhatsApp, cfg.Notify.Backend)
				assert.Equal(t, "https://graph.facebook.com/v21.0", cfg.Notify.WhatsApp.APIURL)
				assert.Equal(t, StateBackendFile, cfg.State.Backend)
				assert.Equal(t, "sent_ids.json", cfg.State.Path)
				assert.Equal(t, "deal IDs", cfg.Message.Label)
				assert.True(t, cfg.Message.ShouldNotifyWhenEmpty())
				assert.Equal(t, "@every 1h", cfg.Schedule.Cron)
				assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "yaml file with env substitution",
			yaml: `
pipedrive:
  api_token: "${PD_SECRET}"
  filter_id: "7"
  base_url: https://acme.pipedrive.com/api/v1/
notify:
  backend: log
  recipient: "5511988887777"
message:
  label: "IDs dos negócios acima de R$15k"
  notify_when_empty: false
`,
			env: map[string]string{"PD_SECRET": "from-env"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "from-env", cfg.Pipedrive.APIToken)
				assert.Equal(t, "7", cfg.Pipedrive.FilterID)
				assert.Equal(t, "https://acme.pipedrive.com/api/v1", cfg.Pipedrive.BaseURL)
				assert.Equal(t, BackendLog, cfg.Notify.Backend)
				assert.Equal(t, "+5511988887777", cfg.Notify.Recipient)
				assert.Equal(t, "IDs dos negócios acima de R$15k", cfg.Message.Label)
				assert.False(t, cfg.Message.ShouldNotifyWhenEmpty())
			},
		},
		{
			name: "environment overrides yaml",
			yaml: `
pipedrive:
  api_token: file-token
  filter_id: "1"
notify:
  backend: log
  recipient: "5511988887777"
`,
			env: map[string]string{"PIPEDRIVE_FILTER_ID": "99", "NOTIFY_WHEN_EMPTY": "false"},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "file-token", cfg.Pipedrive.APIToken)
				assert.Equal(t, "99", cfg.Pipedrive.FilterID)
				assert.False(t, cfg.Message.ShouldNotifyWhenEmpty())
			},
		},
		{
			name: "discord backend",
			env: withEnv(without(requiredEnv(), "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID"),
				"NOTIFY_BACKEND", "Discord",
				"DISCORD_WEBHOOK_URL", "https://discord.com/api/webhooks/1/abc",
			),
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, BackendDiscord, cfg.Notify.Backend)
				assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Notify.Discord.WebhookURL)
			},
		},
		{
			name: "shoutrrr backend splits urls",
			env: withEnv(requiredEnv(),
				"NOTIFY_BACKEND", "shoutrrr",
				"SHOUTRRR_URLS", "telegram://token@telegram?chats={recipient}, generic://example.com/hook",
			),
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, []string{
					"telegram://token@telegram?chats={recipient}",
					"generic://example.com/hook",
				}, cfg.Notify.Shoutrrr.URLs)
			},
		},
		{
			name: "postgres state backend",
			env: withEnv(requiredEnv(),
				"STATE_BACKEND", "postgres",
				"STATE_DSN", "postgres://u:p@localhost:5432/notifier",
			),
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, StateBackendPostgres, cfg.State.Backend)
				assert.Equal(t, "postgres://u:p@localhost:5432/notifier", cfg.State.DSN)
			},
		},
		{
			name:    "missing api key",
			env:     without(requiredEnv(), "PIPEDRIVE_API_KEY"),
			wantErr: "pipedrive.api_token is required",
		},
		{
			name:    "missing filter id",
			env:     without(requiredEnv(), "PIPEDRIVE_FILTER_ID"),
			wantErr: "pipedrive.filter_id is required",
		},
		{
			name:    "missing recipient",
			env:     without(requiredEnv(), "WHATSAPP_RECIPIENT"),
			wantErr: "notify.recipient is required",
		},
		{
			name:    "blank value counts as missing",
			env:     withEnv(requiredEnv(), "PIPEDRIVE_API_KEY", "   "),
			wantErr: "pipedrive.api_token is required",
		},
		{
			name:    "invalid recipient",
			env:     withEnv(requiredEnv(), "WHATSAPP_RECIPIENT", "call me"),
			wantErr: "invalid recipient",
		},
		{
			name:    "whatsapp backend without credentials",
			env:     without(requiredEnv(), "WHATSAPP_TOKEN"),
			wantErr: "notify.whatsapp.token is required",
		},
		{
			name:    "unknown notify backend",
			env:     withEnv(requiredEnv(), "NOTIFY_BACKEND", "pigeon"),
			wantErr: `notify.backend must be one of: whatsapp, discord, shoutrrr, log (got "pigeon")`,
		},
		{
			name:    "postgres backend without dsn",
			env:     withEnv(requiredEnv(), "STATE_BACKEND", "postgres"),
			wantErr: "state.dsn is required when backend is postgres",
		},
		{
			name:    "invalid base url",
			env:     withEnv(requiredEnv(), "PIPEDRIVE_BASE_URL", "pipedrive.com"),
			wantErr: "pipedrive.base_url must be an absolute http(s) URL",
		},
		{
			name:    "invalid cron",
			env:     withEnv(requiredEnv(), "SCHEDULE_CRON", "every now and then"),
			wantErr: "schedule.cron",
		},
		{
			name:    "invalid log level",
			env:     withEnv(requiredEnv(), "LOG_LEVEL", "trace"),
			wantErr: "logging.level must be one of",
		},
		{
			name:    "invalid bool",
			env:     withEnv(requiredEnv(), "NOTIFY_WHEN_EMPTY", "maybe"),
			wantErr: "NOTIFY_WHEN_EMPTY",
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			env:     requiredEnv(),
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))
			}

			cfg, err := LoadWithLookup(path, envLookup(tt.env))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.True(t, domain.IsKind(err, domain.KindConfiguration))
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_ReportsEveryMissingValue(t *testing.T) {
	t.Parallel()

	_, err := LoadWithLookup("", envLookup(nil))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "PIPEDRIVE_API_KEY")
	assert.Contains(t, msg, "PIPEDRIVE_FILTER_ID")
	assert.Contains(t, msg, "WHATSAPP_RECIPIENT")
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadWithLookup("/nonexistent/path/config.yaml", envLookup(requiredEnv()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
	assert.True(t, domain.IsKind(err, domain.KindConfiguration))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"DEAL_NOTIFIER_TEST_FROM_FILE=file\nDEAL_NOTIFIER_TEST_PRESET=file\n",
	), 0o600))

	t.Setenv("DEAL_NOTIFIER_TEST_PRESET", "env")
	t.Cleanup(func() { os.Unsetenv("DEAL_NOTIFIER_TEST_FROM_FILE") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	assert.Equal(t, "file", os.Getenv("DEAL_NOTIFIER_TEST_FROM_FILE"))
	assert.Equal(t, "env", os.Getenv("DEAL_NOTIFIER_TEST_PRESET"))
}

func TestMessageConfig_ShouldNotifyWhenEmpty(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	assert.True(t, (&MessageConfig{}).ShouldNotifyWhenEmpty())
	assert.True(t, (&MessageConfig{NotifyWhenEmpty: &yes}).ShouldNotifyWhenEmpty())
	assert.False(t, (&MessageConfig{NotifyWhenEmpty: &no}).ShouldNotifyWhenEmpty())
}
