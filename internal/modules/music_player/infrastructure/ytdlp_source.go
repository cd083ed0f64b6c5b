package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/lrstanley/go-ytdlp"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// DefaultYtdlpFormat selects an audio-only format, preferring webm/opus.
const DefaultYtdlpFormat = "webm[abr>0]/bestaudio/best"

// maxMetadataLine bounds a single JSON record; yt-dlp inlines every format it found.
const maxMetadataLine = 16 * 1024 * 1024

// ErrIncompleteMetadata is returned when a record lacks a field a Track requires.
var ErrIncompleteMetadata = errors.New("incomplete metadata")

// YtdlpConfig configures a YtdlpSource.
type YtdlpConfig struct {
	Executable string // empty means "yt-dlp" from PATH
	Format     string
	Username   string
	Password   string
}

// YtdlpSource resolves URLs by running yt-dlp and streaming one JSON record per line.
type YtdlpSource struct {
	cfg   YtdlpConfig
	newID func() domain.TrackID
}

// NewYtdlpSource creates a new YtdlpSource.
func NewYtdlpSource(cfg YtdlpConfig) *YtdlpSource {
	if cfg.Format == "" {
		cfg.Format = DefaultYtdlpFormat
	}
	return &YtdlpSource{
		cfg: cfg,
		newID: func() domain.TrackID {
			return domain.TrackID(uuid.NewString())
		},
	}
}

func (s *YtdlpSource) command() *ytdlp.Command {
	cmd := ytdlp.New().
		Format(s.cfg.Format).
		DumpJSON().
		NoWarnings().
		IgnoreConfig()

	if s.cfg.Executable != "" {
		cmd.SetExecutable(s.cfg.Executable)
	}
	if s.cfg.Username != "" {
		cmd.Username(s.cfg.Username).Password(s.cfg.Password)
	}
	return cmd
}

// Fetch starts yt-dlp for url and streams its records as they are printed.
func (s *YtdlpSource) Fetch(
	ctx context.Context,
	url string,
	replyChannelID snowflake.ID,
) (<-chan ports.FetchResult, error) {
	cmd := s.command().BuildCommand(ctx, url)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open yt-dlp output: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	slog.Debug("started yt-dlp", "url", url, "pid", cmd.Process.Pid)

	results := make(chan ports.FetchResult)
	go func() {
		defer close(results)

		delivered := 0
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), maxMetadataLine)

	scan:
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			track, err := parseMetadataLine(line, replyChannelID)
			if track != nil {
				track.ID = s.newID()
			}

			select {
			case results <- ports.FetchResult{Track: track, Err: err}:
				delivered++
			case <-ctx.Done():
				break scan
			}
		}

		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			select {
			case results <- ports.FetchResult{Err: fmt.Errorf("failed to read yt-dlp output: %w", err)}:
			case <-ctx.Done():
			}
		}

		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			slog.Warn(
				"yt-dlp exited with error",
				"url", url,
				"records", delivered,
				"error", err,
				"stderr", strings.TrimSpace(stderr.String()),
			)
			return
		}
		slog.Debug("yt-dlp finished", "url", url, "records", delivered)
	}()

	return results, nil
}

// ytdlpRecord is the subset of a yt-dlp info dict that a Track uses.
type ytdlpRecord struct {
	ID         string   `json:"id"`
	Title      *string  `json:"title"`
	Duration   *float64 `json:"duration"`
	URL        *string  `json:"url"`
	WebpageURL string   `json:"webpage_url"`
	Uploader   string   `json:"uploader"`
	Thumbnail  string   `json:"thumbnail"`
	Extractor  string   `json:"extractor_key"`
}

// parseMetadataLine turns one yt-dlp JSON record into a Track without an ID.
func parseMetadataLine(line []byte, replyChannelID snowflake.ID) (*domain.Track, error) {
	var record ytdlpRecord
	if err := json.Unmarshal(line, &record); err != nil {
		return nil, fmt.Errorf("invalid metadata record: %w", err)
	}

	var missing []string
	if record.Title == nil || *record.Title == "" {
		missing = append(missing, "title")
	}
	if record.Duration == nil {
		missing = append(missing, "duration")
	}
	if record.URL == nil || *record.URL == "" {
		missing = append(missing, "url")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteMetadata, strings.Join(missing, ", "))
	}
	if *record.Duration < 0 {
		return nil, fmt.Errorf("%w: negative duration", ErrIncompleteMetadata)
	}

	track := domain.NewTrack(
		"",
		*record.Title,
		time.Duration(*record.Duration*float64(time.Second)),
		*record.URL,
		replyChannelID,
	)
	track.SourceID = record.ID
	track.WebpageURL = record.WebpageURL
	track.Uploader = record.Uploader
	track.ThumbnailURL = record.Thumbnail
	track.Extractor = record.Extractor
	return track, nil
}

// Ensure YtdlpSource implements ports.MetadataSource.
var _ ports.MetadataSource = (*YtdlpSource)(nil)
