package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultURL           = "api.deepgram.com"
	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 10
	DefaultMinConns      = 2
	DefaultBatchSize     = 100
	DefaultFlushInterval = 1 * time.Second
	DefaultBufferSize    = 1000
)

func (c *Config) applyDefaults() {
	if c.Client.URL == "" {
		c.Client.URL = DefaultURL
	}

	if c.Database.Transcripts.Configured() {
		applyDBDefaults(&c.Database.Transcripts)
	}

	if c.Sink.BatchSize == 0 {
		c.Sink.BatchSize = DefaultBatchSize
	}
	if c.Sink.FlushInterval == 0 {
		c.Sink.FlushInterval = DefaultFlushInterval
	}
	if c.Sink.BufferSize == 0 {
		c.Sink.BufferSize = DefaultBufferSize
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
