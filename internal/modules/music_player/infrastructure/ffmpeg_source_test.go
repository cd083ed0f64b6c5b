package infrastructure

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

func TestFfmpegSource_OpenRejectsMissingURL(t *testing.T) {
	source := NewFfmpegSource("")

	tests := []struct {
		name  string
		track *domain.Track
	}{
		{name: "nil track", track: nil},
		{name: "empty stream url", track: &domain.Track{Title: "Song"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := source.Open(context.Background(), tt.track)
			if !errors.Is(err, ErrNoStreamURL) {
				t.Errorf("expected ErrNoStreamURL, got %v", err)
			}
		})
	}
}

func TestFfmpegSource_OpenCancelledContext(t *testing.T) {
	source := NewFfmpegSource(fakeExecutable(t, "printf 'pcm'\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := source.Open(ctx, storeTrack("1")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFfmpegSource_OpenMissingExecutable(t *testing.T) {
	source := NewFfmpegSource(filepath.Join(t.TempDir(), "does-not-exist"))

	if _, err := source.Open(context.Background(), storeTrack("1")); err == nil {
		t.Error("expected error for missing executable")
	}
}

func TestFfmpegSource_StreamsStdout(t *testing.T) {
	source := NewFfmpegSource(fakeExecutable(t, "printf 'pcmdata'\n"))

	stream, err := source.Open(context.Background(), storeTrack("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(data) != "pcmdata" {
		t.Errorf("expected 'pcmdata', got %q", data)
	}

	if err := stream.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if err := stream.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
}

func TestFfmpegSource_CloseKillsProcess(t *testing.T) {
	source := NewFfmpegSource(fakeExecutable(t, "exec sleep 30\n"))

	stream, err := source.Open(context.Background(), storeTrack("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = stream.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not stop the process")
	}
}
