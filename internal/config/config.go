package config

import (
	"net/http"
	"time"
)

// Config is the root configuration for the livecap CLI and the live
// transcription client.
type Config struct {
	Client        ClientOptions  `yaml:"client"`
	Transcription LiveOptions    `yaml:"transcription"`
	Database      DatabaseConfig `yaml:"database"`
	Sink          SinkConfig     `yaml:"sink"`
}

// ClientOptions holds the connection-level settings for the live client.
type ClientOptions struct {
	// URL is the API host. Bare hosts and http(s) URLs are converted to
	// wss/ws automatically.
	URL string `yaml:"url"`

	// APIKey is sent as "Authorization: Token <key>".
	APIKey string `yaml:"api_key"`

	// Headers are extra headers sent on the websocket handshake.
	Headers map[string]string `yaml:"headers"`

	// Options are string-valued feature toggles. Recognized keys are the
	// Option* constants below; a value of "true" enables the toggle.
	Options map[string]string `yaml:"options"`
}

// Recognized keys for ClientOptions.Options.
const (
	// OptionKeepalive enables the keepalive loop.
	OptionKeepalive = "keepalive"

	// OptionTerminationExceptionConnect propagates the dial error from
	// Start instead of reporting failure as a boolean.
	OptionTerminationExceptionConnect = "termination_exception_connect"

	// OptionTerminationException records a loop's terminal error for the
	// caller after the Error event and shutdown have run.
	OptionTerminationException = "termination_exception"

	// OptionTerminationExceptionSend propagates send failures as errors.
	OptionTerminationExceptionSend = "termination_exception_send"
)

// Enabled reports whether the named option is set to "true".
func (c *ClientOptions) Enabled(name string) bool {
	return c.Options[name] == "true"
}

// HTTPHeader builds the base handshake headers: Accept, Authorization
// (when an API key is configured), and any configured extras.
func (c *ClientOptions) HTTPHeader() http.Header {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.APIKey != "" {
		header.Set("Authorization", "Token "+c.APIKey)
	}
	for k, v := range c.Headers {
		header.Set(k, v)
	}
	return header
}

// LiveOptions are the transcription query parameters for the live
// endpoint. Zero values are omitted from the query string.
type LiveOptions struct {
	Model          string   `yaml:"model"`
	Language       string   `yaml:"language"`
	Version        string   `yaml:"version"`
	Encoding       string   `yaml:"encoding"`
	Channels       int      `yaml:"channels"`
	SampleRate     int      `yaml:"sample_rate"`
	Punctuate      bool     `yaml:"punctuate"`
	SmartFormat    bool     `yaml:"smart_format"`
	InterimResults bool     `yaml:"interim_results"`
	Diarize        bool     `yaml:"diarize"`
	Multichannel   bool     `yaml:"multichannel"`
	Numerals       bool     `yaml:"numerals"`
	FillerWords    bool     `yaml:"filler_words"`
	VadEvents      bool     `yaml:"vad_events"`
	UtteranceEndMs int      `yaml:"utterance_end_ms"`
	Endpointing    string   `yaml:"endpointing"`
	Keywords       []string `yaml:"keywords"`
	Search         []string `yaml:"search"`
}

// DatabaseConfig holds the optional transcript store.
type DatabaseConfig struct {
	Transcripts DBConfig `yaml:"transcripts"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// Configured reports whether a transcript store was configured at all.
func (db *DBConfig) Configured() bool {
	return db.Host != ""
}

// SinkConfig holds transcript writer settings.
type SinkConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}
