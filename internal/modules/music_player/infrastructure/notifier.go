package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/sglre6355/boombox/internal/modules/music_player/application/ports"
)

// Notifier defaults.
const (
	DefaultNotifyRate       = 1.0
	DefaultNotifyBurst      = 5
	DefaultNotifyBufferSize = 100
)

// NotifierConfig configures a DiscordNotifier.
type NotifierConfig struct {
	// Rate is the sustained number of messages per second.
	Rate float64
	// Burst is the number of messages that may be sent back to back.
	Burst int
	// BufferSize is the number of messages held while waiting on the limiter.
	BufferSize int
}

type notification struct {
	channelID snowflake.ID
	text      string
}

// DiscordNotifier posts plain text messages to Discord channels from a single
// rate limited dispatcher.
type DiscordNotifier struct {
	send    func(channelID, text string) error
	limiter *rate.Limiter
	pending chan notification

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
	dropped int
	mu      sync.RWMutex
}

// NewDiscordNotifier creates a new DiscordNotifier and starts its dispatcher.
func NewDiscordNotifier(session *discordgo.Session, cfg NotifierConfig) *DiscordNotifier {
	return newDiscordNotifier(func(channelID, text string) error {
		_, err := session.ChannelMessageSend(channelID, text)
		return err
	}, cfg)
}

func newDiscordNotifier(send func(channelID, text string) error, cfg NotifierConfig) *DiscordNotifier {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultNotifyRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultNotifyBurst
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultNotifyBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	n := &DiscordNotifier{
		send:    send,
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		pending: make(chan notification, cfg.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	n.wg.Add(1)
	go n.dispatch()

	return n
}

// dispatch sends queued messages until pending is closed and drained, or
// until the limiter wait is cancelled by Close.
func (n *DiscordNotifier) dispatch() {
	defer n.wg.Done()
	for msg := range n.pending {
		if err := n.limiter.Wait(n.ctx); err != nil {
			n.dropped = 1 + len(n.pending)
			return
		}
		if err := n.send(msg.channelID.String(), msg.text); err != nil {
			slog.Warn(
				"failed to send notification",
				"channel", msg.channelID,
				"text", msg.text,
				"error", err,
			)
			continue
		}
		slog.Debug("sent notification", "channel", msg.channelID)
	}
}

// Notify queues text for channelID.
// Non-blocking: if the buffer is full, the message is dropped with a warning.
func (n *DiscordNotifier) Notify(channelID snowflake.ID, text string) {
	if channelID == 0 {
		slog.Debug("notification has no channel, dropping", "text", text)
		return
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		slog.Warn("attempted to notify after close", "channel", channelID)
		return
	}

	select {
	case n.pending <- notification{channelID: channelID, text: text}:
	default:
		slog.Warn("notification buffer full, dropping message", "channel", channelID, "text", text)
	}
}

// Close stops accepting notifications and sends what is still queued at the
// usual rate. Messages left when ctx is done are dropped.
func (n *DiscordNotifier) Close(ctx context.Context) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.pending)
	n.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		n.cancel()
		<-drained
	}
	n.cancel()

	if n.dropped > 0 {
		slog.Warn("notifier closed with pending messages", "dropped", n.dropped)
		return
	}
	slog.Debug("notifier closed")
}

// Ensure DiscordNotifier implements ports.Notifier.
var _ ports.Notifier = (*DiscordNotifier)(nil)
