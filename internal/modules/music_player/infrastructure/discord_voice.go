package infrastructure

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"layeh.com/gopus"

	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
)

// ErrVoiceNotReady is returned when a guild has no ready voice connection.
var ErrVoiceNotReady = errors.New("voice connection is not ready")

// frameEncoder encodes one PCM frame into an opus packet.
type frameEncoder interface {
	Encode(pcm []int16, frameSize, maxDataBytes int) ([]byte, error)
}

// DiscordVoiceSink implements ports.VoiceSink on discordgo voice connections.
type DiscordVoiceSink struct {
	session    *discordgo.Session
	newEncoder func() (frameEncoder, error)

	mu      sync.Mutex
	players map[snowflake.ID]*voicePlayer
}

// NewDiscordVoiceSink creates a new DiscordVoiceSink.
func NewDiscordVoiceSink(session *discordgo.Session) *DiscordVoiceSink {
	return &DiscordVoiceSink{
		session: session,
		newEncoder: func() (frameEncoder, error) {
			return gopus.NewEncoder(pcmSampleRate, pcmChannels, gopus.Audio)
		},
		players: make(map[snowflake.ID]*voicePlayer),
	}
}

func (s *DiscordVoiceSink) connection(guildID snowflake.ID) *discordgo.VoiceConnection {
	s.session.RLock()
	defer s.session.RUnlock()
	return s.session.VoiceConnections[guildID.String()]
}

// Join connects the bot, deafened, to the specified voice channel.
func (s *DiscordVoiceSink) Join(ctx context.Context, guildID, channelID snowflake.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	slog.Info("joined voice channel", "guild", guildID, "channel", channelID)
	return nil
}

// IsConnected returns true if the guild has a ready voice connection.
func (s *DiscordVoiceSink) IsConnected(guildID snowflake.ID) bool {
	vc := s.connection(guildID)
	if vc == nil {
		return false
	}

	vc.RLock()
	defer vc.RUnlock()
	return vc.Ready
}

// Play starts sending stream to the guild's voice connection, replacing
// whatever is currently being sent.
func (s *DiscordVoiceSink) Play(guildID snowflake.ID, stream io.ReadCloser) error {
	if !s.IsConnected(guildID) {
		return ErrVoiceNotReady
	}
	vc := s.connection(guildID)

	encoder, err := s.newEncoder()
	if err != nil {
		return fmt.Errorf("failed to create opus encoder: %w", err)
	}

	s.Stop(guildID)

	player := newVoicePlayer(stream)

	s.mu.Lock()
	s.players[guildID] = player
	s.mu.Unlock()

	go func() {
		defer close(player.done)
		defer player.closeStream()
		defer s.release(guildID, player)

		if err := vc.Speaking(true); err != nil {
			slog.Debug("failed to set speaking state", "guild", guildID, "error", err)
		}
		defer func() {
			if err := vc.Speaking(false); err != nil {
				slog.Debug("failed to clear speaking state", "guild", guildID, "error", err)
			}
		}()

		if err := pumpOpus(stream, encoder, vc.OpusSend, player.stop); err != nil {
			slog.Warn("voice playback ended with error", "guild", guildID, "error", err)
			return
		}
		slog.Debug("voice playback ended", "guild", guildID)
	}()

	return nil
}

// release forgets player if it is still the guild's active player.
func (s *DiscordVoiceSink) release(guildID snowflake.ID, player *voicePlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.players[guildID] == player {
		delete(s.players, guildID)
	}
}

// Stop halts the guild's playback and waits for the sender to exit.
func (s *DiscordVoiceSink) Stop(guildID snowflake.ID) {
	s.mu.Lock()
	player, ok := s.players[guildID]
	delete(s.players, guildID)
	s.mu.Unlock()

	if !ok {
		return
	}
	player.halt()
}

// Leave stops playback and disconnects from the guild's voice channel.
func (s *DiscordVoiceSink) Leave(ctx context.Context, guildID snowflake.ID) error {
	s.Stop(guildID)

	vc := s.connection(guildID)
	if vc == nil {
		return nil
	}

	if err := vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}

	slog.Info("left voice channel", "guild", guildID)
	return nil
}

// LeaveAll disconnects from every voice channel the bot is in.
func (s *DiscordVoiceSink) LeaveAll(ctx context.Context) {
	s.session.RLock()
	guildIDs := make([]snowflake.ID, 0, len(s.session.VoiceConnections))
	for id := range s.session.VoiceConnections {
		guildID, err := snowflake.Parse(id)
		if err != nil {
			continue
		}
		guildIDs = append(guildIDs, guildID)
	}
	s.session.RUnlock()

	for _, guildID := range guildIDs {
		if err := s.Leave(ctx, guildID); err != nil {
			slog.Warn("failed to leave voice channel", "guild", guildID, "error", err)
		}
	}
}

// voicePlayer tracks one running sender goroutine.
type voicePlayer struct {
	stream io.ReadCloser
	stop   chan struct{}
	done   chan struct{}

	stopOnce  sync.Once
	closeOnce sync.Once
}

func newVoicePlayer(stream io.ReadCloser) *voicePlayer {
	return &voicePlayer{
		stream: stream,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (p *voicePlayer) closeStream() {
	p.closeOnce.Do(func() {
		_ = p.stream.Close()
	})
}

// halt signals the sender and closes the stream so a blocked read returns.
func (p *voicePlayer) halt() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.closeStream()
	<-p.done
}

// pumpOpus reads PCM frames from stream, encodes them and sends them to out
// until the stream ends or stop is closed. A trailing partial frame is dropped.
func pumpOpus(stream io.Reader, encoder frameEncoder, out chan<- []byte, stop <-chan struct{}) error {
	pcm := make([]byte, pcmFrameSize*pcmChannels*2)
	samples := make([]int16, pcmFrameSize*pcmChannels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if _, err := io.ReadFull(stream, pcm); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			select {
			case <-stop:
				return nil
			default:
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		}

		frame, err := encoder.Encode(samples, pcmFrameSize, len(pcm))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case out <- frame:
		case <-stop:
			return nil
		}
	}
}

// Ensure DiscordVoiceSink implements ports.VoiceSink.
var _ ports.VoiceSink = (*DiscordVoiceSink)(nil)
