package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempConfig(t, `
client:
  api_key: secret
transcription:
  model: nova-2
  language: en-US
`)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Client.URL != DefaultURL {
		t.Errorf("expected default URL %q, got %q", DefaultURL, cfg.Client.URL)
	}
	if cfg.Client.APIKey != "secret" {
		t.Errorf("unexpected api key %q", cfg.Client.APIKey)
	}
	if cfg.Transcription.Model != "nova-2" {
		t.Errorf("unexpected model %q", cfg.Transcription.Model)
	}
	if cfg.Sink.BatchSize != DefaultBatchSize {
		t.Errorf("expected default batch size %d, got %d", DefaultBatchSize, cfg.Sink.BatchSize)
	}
	if cfg.Sink.FlushInterval != DefaultFlushInterval {
		t.Errorf("expected default flush interval %v, got %v", DefaultFlushInterval, cfg.Sink.FlushInterval)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_DG_KEY", "from-env")

	path := writeTempConfig(t, `
client:
  url: api.deepgram.com
  api_key: ${TEST_DG_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Client.APIKey != "from-env" {
		t.Errorf("expected env expansion, got %q", cfg.Client.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadAndValidate_DBDefaults(t *testing.T) {
	path := writeTempConfig(t, `
client:
  url: api.deepgram.com
  api_key: secret
database:
  transcripts:
    host: localhost
    name: transcripts
    user: writer
    password: pw
`)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}

	db := cfg.Database.Transcripts
	if db.Port != DefaultDBPort {
		t.Errorf("expected default port %d, got %d", DefaultDBPort, db.Port)
	}
	if db.SSLMode != DefaultDBSSLMode {
		t.Errorf("expected default ssl mode %q, got %q", DefaultDBSSLMode, db.SSLMode)
	}
	if db.MaxConns != DefaultMaxConns || db.MinConns != DefaultMinConns {
		t.Errorf("expected default pool sizes, got max=%d min=%d", db.MaxConns, db.MinConns)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Client: ClientOptions{URL: "api.deepgram.com"},
			Sink: SinkConfig{
				BatchSize:     DefaultBatchSize,
				FlushInterval: DefaultFlushInterval,
				BufferSize:    DefaultBufferSize,
			},
		}
	}

	t.Run("valid minimal", func(t *testing.T) {
		cfg := base()
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing url", func(t *testing.T) {
		cfg := base()
		cfg.Client.URL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing url")
		}
	})

	t.Run("db configured but incomplete", func(t *testing.T) {
		cfg := base()
		cfg.Database.Transcripts = DBConfig{Host: "localhost", MaxConns: 5}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for incomplete db config")
		}
	})

	t.Run("min conns above max", func(t *testing.T) {
		cfg := base()
		cfg.Database.Transcripts = DBConfig{
			Host: "localhost", Name: "t", User: "u", Password: "p",
			MaxConns: 2, MinConns: 5,
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for min_conns > max_conns")
		}
	})

	t.Run("bad sink with db", func(t *testing.T) {
		cfg := base()
		cfg.Database.Transcripts = DBConfig{
			Host: "localhost", Name: "t", User: "u", Password: "p",
			MaxConns: 5, MinConns: 1,
		}
		cfg.Sink.BatchSize = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for zero batch size")
		}
	})
}

func TestLiveOptionsCheck(t *testing.T) {
	tests := []struct {
		name    string
		opts    LiveOptions
		wantErr bool
	}{
		{name: "zero value", opts: LiveOptions{}},
		{name: "typical", opts: LiveOptions{Model: "nova-2", Language: "en-US", InterimResults: true}},
		{name: "encoding with rate", opts: LiveOptions{Encoding: "linear16", SampleRate: 16000}},
		{name: "encoding without rate", opts: LiveOptions{Encoding: "linear16"}, wantErr: true},
		{name: "negative channels", opts: LiveOptions{Channels: -1}, wantErr: true},
		{name: "negative sample rate", opts: LiveOptions{SampleRate: -1}, wantErr: true},
		{name: "utterance end too low", opts: LiveOptions{UtteranceEndMs: 500, InterimResults: true}, wantErr: true},
		{name: "utterance end without interim", opts: LiveOptions{UtteranceEndMs: 1000}, wantErr: true},
		{name: "utterance end ok", opts: LiveOptions{UtteranceEndMs: 1000, InterimResults: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Check()
			if tt.wantErr && err == nil {
				t.Error("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLiveOptionsToMap(t *testing.T) {
	opts := LiveOptions{
		Model:          "nova-2",
		Language:       "en-US",
		SampleRate:     16000,
		Encoding:       "linear16",
		Punctuate:      true,
		InterimResults: true,
		UtteranceEndMs: 1000,
		Keywords:       []string{"deepgram", "nova"},
	}

	m := opts.ToMap()

	want := map[string]string{
		"model":            "nova-2",
		"language":         "en-US",
		"sample_rate":      "16000",
		"encoding":         "linear16",
		"punctuate":        "true",
		"interim_results":  "true",
		"utterance_end_ms": "1000",
		"keywords":         "deepgram,nova",
	}
	if len(m) != len(want) {
		t.Errorf("expected %d entries, got %d: %v", len(want), len(m), m)
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("%s: got %q, want %q", k, m[k], v)
		}
	}
}

func TestLiveOptionsToMap_SkipsZeroValues(t *testing.T) {
	m := (&LiveOptions{}).ToMap()
	if len(m) != 0 {
		t.Errorf("expected empty map for zero options, got %v", m)
	}
}

func TestClientOptionsEnabled(t *testing.T) {
	c := &ClientOptions{Options: map[string]string{
		OptionKeepalive:            "true",
		OptionTerminationException: "false",
	}}

	if !c.Enabled(OptionKeepalive) {
		t.Error("expected keepalive enabled")
	}
	if c.Enabled(OptionTerminationException) {
		t.Error("expected termination_exception disabled")
	}
	if c.Enabled(OptionTerminationExceptionSend) {
		t.Error("expected unset option disabled")
	}
}

func TestClientOptionsHTTPHeader(t *testing.T) {
	c := &ClientOptions{
		APIKey:  "secret",
		Headers: map[string]string{"X-Tenant": "t1"},
	}

	h := c.HTTPHeader()
	if got := h.Get("Authorization"); got != "Token secret" {
		t.Errorf("unexpected Authorization header %q", got)
	}
	if got := h.Get("Accept"); got != "application/json" {
		t.Errorf("unexpected Accept header %q", got)
	}
	if got := h.Get("X-Tenant"); got != "t1" {
		t.Errorf("expected extra header to pass through, got %q", got)
	}

	h = (&ClientOptions{}).HTTPHeader()
	if h.Get("Authorization") != "" {
		t.Error("expected no Authorization header without an api key")
	}
}
