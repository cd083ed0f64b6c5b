package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// PCM layout produced by FfmpegSource and consumed by DiscordVoiceSink.
const (
	pcmSampleRate = 48000
	pcmChannels   = 2
	pcmFrameSize  = 960 // 20ms at 48kHz
)

// ErrNoStreamURL is returned when a track has nothing to transcode.
var ErrNoStreamURL = errors.New("track has no stream url")

// FfmpegSource decodes a track's stream URL into raw PCM with ffmpeg.
type FfmpegSource struct {
	executable string
}

// NewFfmpegSource creates a new FfmpegSource. An empty executable means "ffmpeg" from PATH.
func NewFfmpegSource(executable string) *FfmpegSource {
	if executable == "" {
		executable = "ffmpeg"
	}
	return &FfmpegSource{executable: executable}
}

func (s *FfmpegSource) args(url string) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-f", "s16le",
		"-ar", strconv.Itoa(pcmSampleRate),
		"-ac", strconv.Itoa(pcmChannels),
		"-loglevel", "warning",
		"pipe:1",
	}
}

// Open starts ffmpeg for track. The process outlives ctx and ends when the
// returned stream is closed.
func (s *FfmpegSource) Open(ctx context.Context, track *domain.Track) (io.ReadCloser, error) {
	if track == nil || track.StreamURL == "" {
		return nil, ErrNoStreamURL
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(s.executable, s.args(track.StreamURL)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open ffmpeg output: %w", err)
	}
	stream := &ffmpegStream{cmd: cmd, stdout: stdout, title: track.Title}
	cmd.Stderr = &stream.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	slog.Debug("started ffmpeg", "title", track.Title, "pid", cmd.Process.Pid)

	return stream, nil
}

// ffmpegStream is the stdout of a running ffmpeg process.
type ffmpegStream struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	title  string

	once sync.Once
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

// Close kills ffmpeg if it is still running and reaps it.
func (s *ffmpegStream) Close() error {
	s.once.Do(func() {
		_ = s.cmd.Process.Kill()
		err := s.cmd.Wait()

		var exitErr *exec.ExitError
		if err != nil && !(errors.As(err, &exitErr) && !exitErr.Exited()) {
			slog.Warn(
				"ffmpeg exited with error",
				"title", s.title,
				"error", err,
				"stderr", strings.TrimSpace(s.stderr.String()),
			)
			return
		}
		slog.Debug("ffmpeg stopped", "title", s.title)
	})
	return nil
}

// Ensure FfmpegSource implements ports.AudioSource.
var _ ports.AudioSource = (*FfmpegSource)(nil)
