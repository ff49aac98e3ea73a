package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Client.URL == "" {
		return errors.New("client.url is required")
	}

	if err := c.Transcription.Check(); err != nil {
		return fmt.Errorf("transcription: %w", err)
	}

	if c.Database.Transcripts.Configured() {
		if err := c.Database.Transcripts.validate("database.transcripts"); err != nil {
			return err
		}
		if c.Sink.BatchSize < 1 {
			return errors.New("sink.batch_size must be >= 1")
		}
		if c.Sink.BufferSize < 1 {
			return errors.New("sink.buffer_size must be >= 1")
		}
	}

	return nil
}

// Check validates the live options before any network activity. The live
// client calls it when structured options are passed to Start.
func (o *LiveOptions) Check() error {
	if o.Channels < 0 {
		return fmt.Errorf("channels must be >= 0, got %d", o.Channels)
	}
	if o.SampleRate < 0 {
		return fmt.Errorf("sample_rate must be >= 0, got %d", o.SampleRate)
	}
	if o.Encoding != "" && o.SampleRate == 0 {
		return errors.New("sample_rate is required when encoding is set")
	}
	if o.UtteranceEndMs != 0 && o.UtteranceEndMs < 1000 {
		return fmt.Errorf("utterance_end_ms must be >= 1000, got %d", o.UtteranceEndMs)
	}
	if o.UtteranceEndMs != 0 && !o.InterimResults {
		return errors.New("utterance_end_ms requires interim_results")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
