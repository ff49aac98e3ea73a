// livecap streams an audio file to the live transcription endpoint and
// prints transcripts to the console, optionally persisting final results
// to PostgreSQL.
//
// Usage: go run ./cmd/livecap --config configs/livecap.example.yaml --audio sample.raw
//
// Required environment variables:
//
//	DEEPGRAM_API_KEY - API key referenced from the config file
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/VpkPrasanna/deepgram-go/internal/config"
	"github.com/VpkPrasanna/deepgram-go/internal/database"
	"github.com/VpkPrasanna/deepgram-go/internal/live"
	"github.com/VpkPrasanna/deepgram-go/internal/sink"
	"github.com/VpkPrasanna/deepgram-go/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/livecap.example.yaml", "path to config file")
	audioPath := flag.String("audio", "", "path to raw audio file to stream")
	chunkSize := flag.Int("chunk", 8000, "audio bytes per frame")
	interval := flag.Duration("interval", 250*time.Millisecond, "delay between audio frames")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *audioPath == "" {
		logger.Error("--audio is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	client, err := live.NewClient(&cfg.Client, logger)
	if err != nil {
		logger.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	registerPrinters(client, logger)

	// Optional transcript store.
	var writer *sink.TranscriptWriter
	if cfg.Database.Transcripts.Configured() {
		pool, err := database.Connect(ctx, cfg.Database.Transcripts)
		if err != nil {
			logger.Error("failed to connect transcript store", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		writer = sink.NewTranscriptWriter(cfg.Sink, pool, client.SessionID, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start transcript writer", "error", err)
			os.Exit(1)
		}
		client.On(live.EventTranscript, writer.HandleTranscript)
	}

	ok, err := client.Start(ctx, live.StartRequest{
		Options: &cfg.Transcription,
		Extra:   map[string]any{"source": *audioPath},
	})
	if err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	if !ok {
		logger.Error("connection failed")
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return streamAudio(gctx, client, *audioPath, *chunkSize, *interval)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Error("audio stream failed", "error", err)
	}

	client.Finish()

	if writer != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		writer.Stop(stopCtx)
		stats := writer.Stats()
		logger.Info("transcripts persisted", "inserts", stats.Inserts, "flushes", stats.Flushes)
	}
}

// streamAudio sends the file in fixed-size binary frames, then asks the
// server to flush whatever is buffered.
func streamAudio(ctx context.Context, client *live.Client, path string, chunkSize int, interval time.Duration) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}

		n, err := f.Read(buf)
		if n > 0 {
			if ok, serr := client.Send(buf[:n]); !ok {
				if serr != nil {
					return fmt.Errorf("send audio: %w", serr)
				}
				return fmt.Errorf("send audio: connection unavailable")
			}
		}
		if err == io.EOF {
			client.Finalize()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
	}
}

// registerPrinters subscribes console output for every event kind.
func registerPrinters(client *live.Client, logger *slog.Logger) {
	client.On(live.EventOpen, func(ev live.Event, extra map[string]any) {
		logger.Info("connection open", "source", extra["source"])
	})

	client.On(live.EventTranscript, func(ev live.Event, extra map[string]any) {
		r := ev.(*live.TranscriptResponse)
		if len(r.Channel.Alternatives) == 0 {
			return
		}
		text := r.Channel.Alternatives[0].Transcript
		if text == "" {
			return
		}
		marker := "…"
		if r.IsFinal {
			marker = "✓"
		}
		fmt.Printf("%s %s\n", marker, text)
	})

	client.On(live.EventMetadata, func(ev live.Event, extra map[string]any) {
		m := ev.(*live.MetadataResponse)
		logger.Info("stream metadata",
			"request_id", m.RequestID,
			"duration", m.Duration,
			"channels", m.Channels,
		)
	})

	client.On(live.EventSpeechStarted, func(ev live.Event, extra map[string]any) {
		s := ev.(*live.SpeechStartedResponse)
		logger.Debug("speech started", "timestamp", s.Timestamp)
	})

	client.On(live.EventUtteranceEnd, func(ev live.Event, extra map[string]any) {
		u := ev.(*live.UtteranceEndResponse)
		logger.Debug("utterance end", "last_word_end", u.LastWordEnd)
	})

	client.On(live.EventClose, func(ev live.Event, extra map[string]any) {
		logger.Info("connection closed")
	})

	client.On(live.EventError, func(ev live.Event, extra map[string]any) {
		e := ev.(*live.ErrorResponse)
		logger.Error("session error",
			"description", e.Description,
			"message", e.Message,
			"variant", e.Variant,
		)
	})

	client.On(live.EventUnhandled, func(ev live.Event, extra map[string]any) {
		u := ev.(*live.UnhandledResponse)
		logger.Warn("unhandled frame", "raw", u.Raw)
	})
}
