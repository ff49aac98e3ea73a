package live

// Typed payloads for each event kind. Inbound frames carry a "type"
// discriminator matching the EventKind wire values; parseEvent in
// client.go decodes a frame into one of these.

// Word is a single recognized word within an alternative.
type Word struct {
	Word           string  `json:"word"`
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Confidence     float64 `json:"confidence"`
	PunctuatedWord string  `json:"punctuated_word,omitempty"`
	Speaker        int     `json:"speaker,omitempty"`
}

// Alternative is one hypothesis for a channel.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
	Words      []Word  `json:"words"`
}

// Channel holds the alternatives for one audio channel.
type Channel struct {
	Alternatives []Alternative `json:"alternatives"`
}

// ModelInfo describes the model that produced a result.
type ModelInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Arch    string `json:"arch"`
}

// OpenResponse is dispatched when the connection is established.
type OpenResponse struct {
	Type EventKind `json:"type"`
}

func (r *OpenResponse) Kind() EventKind { return EventOpen }

// TranscriptResponse carries an interim or final transcription result.
type TranscriptResponse struct {
	Type         EventKind `json:"type"`
	ChannelIndex []int     `json:"channel_index"`
	Duration     float64   `json:"duration"`
	Start        float64   `json:"start"`
	IsFinal      bool      `json:"is_final"`
	SpeechFinal  bool      `json:"speech_final"`
	Channel      Channel   `json:"channel"`
	Metadata     struct {
		RequestID string    `json:"request_id"`
		ModelInfo ModelInfo `json:"model_info"`
		ModelUUID string    `json:"model_uuid"`
	} `json:"metadata"`
	FromFinalize bool `json:"from_finalize"`
}

func (r *TranscriptResponse) Kind() EventKind { return EventTranscript }

// MetadataResponse summarizes the stream once the server has processed it.
type MetadataResponse struct {
	Type           EventKind            `json:"type"`
	TransactionKey string               `json:"transaction_key"`
	RequestID      string               `json:"request_id"`
	Sha256         string               `json:"sha256"`
	Created        string               `json:"created"`
	Duration       float64              `json:"duration"`
	Channels       int                  `json:"channels"`
	Models         []string             `json:"models"`
	ModelInfo      map[string]ModelInfo `json:"model_info"`
}

func (r *MetadataResponse) Kind() EventKind { return EventMetadata }

// SpeechStartedResponse signals detected speech (vad_events).
type SpeechStartedResponse struct {
	Type      EventKind `json:"type"`
	Channel   []int     `json:"channel"`
	Timestamp float64   `json:"timestamp"`
}

func (r *SpeechStartedResponse) Kind() EventKind { return EventSpeechStarted }

// UtteranceEndResponse signals the end of an utterance (utterance_end_ms).
type UtteranceEndResponse struct {
	Type        EventKind `json:"type"`
	Channel     []int     `json:"channel"`
	LastWordEnd float64   `json:"last_word_end"`
}

func (r *UtteranceEndResponse) Kind() EventKind { return EventUtteranceEnd }

// CloseResponse is dispatched exactly once during shutdown.
type CloseResponse struct {
	Type EventKind `json:"type"`
}

func (r *CloseResponse) Kind() EventKind { return EventClose }

// ErrorResponse is dispatched for every fatal condition observed by a
// loop, and for inbound Error frames from the server.
type ErrorResponse struct {
	Type        EventKind `json:"type"`
	Description string    `json:"description"`
	Message     string    `json:"message"`
	Variant     string    `json:"variant"`
}

func (r *ErrorResponse) Kind() EventKind { return EventError }

// UnhandledResponse wraps a frame whose type discriminator is not part of
// the recognized event set. Raw holds the untouched frame text.
type UnhandledResponse struct {
	Type EventKind `json:"type"`
	Raw  string    `json:"raw"`
}

func (r *UnhandledResponse) Kind() EventKind { return EventUnhandled }
