package config

import (
	"strconv"
	"strings"
)

// ToMap flattens the live options into query parameters. Zero values are
// skipped so the server's defaults apply.
func (o *LiveOptions) ToMap() map[string]string {
	m := make(map[string]string)

	setString(m, "model", o.Model)
	setString(m, "language", o.Language)
	setString(m, "version", o.Version)
	setString(m, "encoding", o.Encoding)
	setInt(m, "channels", o.Channels)
	setInt(m, "sample_rate", o.SampleRate)
	setBool(m, "punctuate", o.Punctuate)
	setBool(m, "smart_format", o.SmartFormat)
	setBool(m, "interim_results", o.InterimResults)
	setBool(m, "diarize", o.Diarize)
	setBool(m, "multichannel", o.Multichannel)
	setBool(m, "numerals", o.Numerals)
	setBool(m, "filler_words", o.FillerWords)
	setBool(m, "vad_events", o.VadEvents)
	setInt(m, "utterance_end_ms", o.UtteranceEndMs)
	setString(m, "endpointing", o.Endpointing)

	if len(o.Keywords) > 0 {
		m["keywords"] = strings.Join(o.Keywords, ",")
	}
	if len(o.Search) > 0 {
		m["search"] = strings.Join(o.Search, ",")
	}

	return m
}

func setString(m map[string]string, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func setInt(m map[string]string, key string, v int) {
	if v != 0 {
		m[key] = strconv.Itoa(v)
	}
}

func setBool(m map[string]string, key string, v bool) {
	if v {
		m[key] = "true"
	}
}
