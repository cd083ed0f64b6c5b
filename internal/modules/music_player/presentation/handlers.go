package presentation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/boombox/internal/bot"
	"github.com/sglre6355/boombox/internal/modules/music_player/application/usecases"
	"github.com/sglre6355/boombox/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorInfo    = 0x5865F2
	colorError   = 0xE74C3C
)

// Reply texts.
const (
	msgMissingURL       = "You need a url after the command, doofus"
	msgInvalidURL       = "That doesn't look like a url"
	msgNotInVoice       = "You need to be in a voice channel"
	msgJoinFailed       = "Unable to join voice channel"
	msgLeaveFailed      = "Unable to leave voice channel"
	msgVoiceLost        = "Lost the voice connection"
	msgNothingQueued    = "There's nothing in the queue"
	msgNotEnoughSongs   = "There's not enough songs in the queue"
	msgAlreadyPlaying   = "Already playing"
	msgNothingPlaying   = "Nothing is playing"
	msgNoTracks         = "Couldn't find anything to play there"
	msgResolveFailed    = "Couldn't look up that url"
	msgSomethingBroke   = "Something went wrong"
	msgOmnissiah        = "As the Omnissiah wills"
	msgFarewell         = "See you space cowboy"
	msgQueuePurged      = "The queue has been purged of filth"
	msgGuildOnly        = "This command only works in a server"
	msgCantPlayTemplate = "Can't play %s"
	msgStoppedEarly     = "Stopped before anything started playing"
)

// PlaybackCommands is the playback state machine the handlers drive.
type PlaybackCommands interface {
	Play(ctx context.Context, input usecases.PlayInput) (*usecases.PlayOutput, error)
	Resume(ctx context.Context, input usecases.ResumeInput) (*usecases.ResumeOutput, error)
	Skip(ctx context.Context, input usecases.SkipInput) (*usecases.SkipOutput, error)
	SkipTo(ctx context.Context, input usecases.SkipToInput) (*usecases.SkipOutput, error)
	Pause(ctx context.Context, input usecases.PauseInput) (*usecases.PauseOutput, error)
	Stop(ctx context.Context, input usecases.StopInput) (*usecases.StopOutput, error)
}

// QueueCommands is the queue access the handlers need.
type QueueCommands interface {
	Add(ctx context.Context, input usecases.QueueAddInput) (*usecases.QueueAddOutput, error)
	List(input usecases.QueueListInput) (*usecases.QueueListOutput, error)
}

// Compile-time checks that the services satisfy the handler interfaces.
var (
	_ PlaybackCommands = (*usecases.PlaybackService)(nil)
	_ QueueCommands    = (*usecases.QueueService)(nil)
)

// Handlers holds all the command handlers.
type Handlers struct {
	playback      PlaybackCommands
	queue         QueueCommands
	mechanicusURL string
}

// NewHandlers creates new Handlers.
func NewHandlers(playback PlaybackCommands, queue QueueCommands, mechanicusURL string) *Handlers {
	return &Handlers{
		playback:      playback,
		queue:         queue,
		mechanicusURL: mechanicusURL,
	}
}

// invocation holds the IDs every command needs.
type invocation struct {
	guildID   snowflake.ID
	userID    snowflake.ID
	channelID snowflake.ID
}

func parseInvocation(i *discordgo.InteractionCreate) (invocation, string) {
	if i.Member == nil || i.Member.User == nil {
		return invocation{}, msgGuildOnly
	}

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return invocation{}, "Invalid guild"
	}
	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return invocation{}, "Invalid user"
	}
	channelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return invocation{}, "Invalid channel"
	}

	return invocation{guildID: guildID, userID: userID, channelID: channelID}, ""
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func intOption(i *discordgo.InteractionCreate, name string) int {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return int(opt.IntValue())
		}
	}
	return 0
}

// HandlePlay handles the /play command.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	return h.play(r, inv, stringOption(i, "url"), "")
}

// HandleMechanicus handles the /mechanicus command.
func (h *Handlers) HandleMechanicus(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	return h.play(r, inv, h.mechanicusURL, msgOmnissiah)
}

func (h *Handlers) play(r bot.Responder, inv invocation, url, content string) error {
	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.Play(context.Background(), usecases.PlayInput{
		GuildID:        inv.guildID,
		UserID:         inv.userID,
		URL:            url,
		ReplyChannelID: inv.channelID,
	})
	if err != nil {
		return editError(r, err)
	}

	return edit(r, content, playingEmbed(output.Track))
}

// HandleAdd handles the /add command.
func (h *Handlers) HandleAdd(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	output, err := h.queue.Add(context.Background(), usecases.QueueAddInput{
		GuildID:        inv.guildID,
		URL:            stringOption(i, "url"),
		ReplyChannelID: inv.channelID,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respond(r, "", &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Looking up %s, each song is announced as it is queued.", output.URL),
		Color:       colorInfo,
	})
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.Resume(context.Background(), usecases.ResumeInput{
		GuildID: inv.guildID,
		UserID:  inv.userID,
	})
	if err != nil {
		return editError(r, err)
	}

	return edit(r, "", playingEmbed(output.Track))
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.Skip(context.Background(), usecases.SkipInput{
		GuildID: inv.guildID,
		UserID:  inv.userID,
	})
	if err != nil {
		return editError(r, err)
	}

	return edit(r, "", playingEmbed(output.Track))
}

// HandleSkipTo handles the /skipto command.
func (h *Handlers) HandleSkipTo(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	if err := r.Defer(); err != nil {
		return err
	}

	output, err := h.playback.SkipTo(context.Background(), usecases.SkipToInput{
		GuildID:  inv.guildID,
		UserID:   inv.userID,
		Position: intOption(i, "position"),
	})
	if err != nil {
		return editError(r, err)
	}

	return edit(r, "", playingEmbed(output.Track))
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	output, err := h.playback.Pause(context.Background(), usecases.PauseInput{
		GuildID: inv.guildID,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	if output.Track == nil {
		return respond(r, "", &discordgo.MessageEmbed{
			Description: msgNothingPlaying,
			Color:       colorInfo,
		})
	}

	return respond(r, "", &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Pausing %s", trackLink(output.Track)),
		Color:       colorSuccess,
	})
}

// HandleStop handles the /stop command.
func (h *Handlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	output, err := h.playback.Stop(context.Background(), usecases.StopInput{
		GuildID: inv.guildID,
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	slog.Debug("stopped guild", "guild", inv.guildID, "cleared", output.ClearedCount)

	return respond(r, msgFarewell, &discordgo.MessageEmbed{
		Description: msgQueuePurged,
		Color:       colorSuccess,
	})
}

// HandleQueue handles the /queue command.
func (h *Handlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	inv, invalid := parseInvocation(i)
	if invalid != "" {
		return respondError(r, invalid)
	}

	output, err := h.queue.List(usecases.QueueListInput{
		GuildID: inv.guildID,
		Page:    intOption(i, "page"),
	})
	if err != nil {
		return respondError(r, errorMessage(err))
	}

	return respond(r, "", queueEmbed(output))
}

// errorMessage turns a use case error into the text shown to the user.
func errorMessage(err error) string {
	var (
		validationErr *usecases.InputValidationError
		connectionErr *usecases.ConnectionError
		resolutionErr *usecases.ResolutionError
		transcodeErr  *usecases.TranscodeError
	)

	switch {
	case errors.As(err, &validationErr):
		if errors.Is(err, usecases.ErrInvalidURL) {
			return msgInvalidURL
		}
		return msgMissingURL
	case errors.Is(err, usecases.ErrUserNotInVoice):
		return msgNotInVoice
	case errors.As(err, &connectionErr):
		switch connectionErr.Op {
		case "join":
			return msgJoinFailed
		case "leave":
			return msgLeaveFailed
		default:
			return msgVoiceLost
		}
	case errors.Is(err, usecases.ErrNothingQueued), errors.Is(err, usecases.ErrQueueEmpty):
		return msgNothingQueued
	case errors.Is(err, usecases.ErrNotEnoughSongs):
		return msgNotEnoughSongs
	case errors.Is(err, usecases.ErrAlreadyPlaying):
		return msgAlreadyPlaying
	case errors.Is(err, usecases.ErrStoppedWhileResolving):
		return msgStoppedEarly
	case errors.As(err, &transcodeErr):
		if transcodeErr.Track != nil {
			return fmt.Sprintf(msgCantPlayTemplate, transcodeErr.Track.Title)
		}
		return fmt.Sprintf(msgCantPlayTemplate, "that song")
	case errors.As(err, &resolutionErr):
		if errors.Is(err, usecases.ErrNoTracks) {
			return msgNoTracks
		}
		return msgResolveFailed
	default:
		return msgSomethingBroke
	}
}

// Response helpers.

func respond(r bot.Responder, content string, embeds ...*discordgo.MessageEmbed) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
		},
	})
}

func edit(r bot.Responder, content string, embeds ...*discordgo.MessageEmbed) error {
	webhookEdit := &discordgo.WebhookEdit{Embeds: &embeds}
	if content != "" {
		webhookEdit.Content = &content
	}
	return r.Edit(webhookEdit)
}

func errorEmbed(message string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorError,
	}
}

func respondError(r bot.Responder, message string) error {
	return respond(r, "", errorEmbed(message))
}

func editError(r bot.Responder, err error) error {
	slog.Debug("command failed", "error", err)
	return edit(r, "", errorEmbed(errorMessage(err)))
}

func trackLink(track *domain.Track) string {
	if track.WebpageURL != "" {
		return fmt.Sprintf("[%s](%s)", track.Title, track.WebpageURL)
	}
	return fmt.Sprintf("**%s**", track.Title)
}

func playingEmbed(track *domain.Track) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: fmt.Sprintf("Playing %s", trackLink(track)),
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  track.FormattedDuration(),
				Inline: true,
			},
		},
	}

	if track.Uploader != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Uploader",
			Value:  track.Uploader,
			Inline: true,
		})
	}
	if source := track.Source().DisplayName(); source != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: source}
	}
	if track.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ThumbnailURL}
	}

	return embed
}

func queueEmbed(output *usecases.QueueListOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Queue",
		Color: colorInfo,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d", output.CurrentPage, output.TotalPages),
		},
	}

	if output.IsEmpty() {
		embed.Description = msgNothingQueued
		return embed
	}

	var sb strings.Builder

	if output.CurrentTrack != nil {
		header := "### Now Playing\n"
		if output.Paused {
			header = "### Paused\n"
		}
		sb.WriteString(header)
		fmt.Fprintf(
			&sb,
			"%s (%s)\n",
			trackLink(output.CurrentTrack),
			output.CurrentTrack.FormattedDuration(),
		)
	}

	if len(output.Tracks) > 0 {
		sb.WriteString("### Up Next\n")
		for n, track := range output.Tracks {
			// Escape the period so Discord does not renumber the list.
			fmt.Fprintf(
				&sb,
				"%d\\. %s (%s)\n",
				output.StartIndex+n,
				trackLink(track),
				track.FormattedDuration(),
			)
		}
	}

	if output.TotalTracks > 0 {
		embed.Footer.Text = fmt.Sprintf(
			"Page %d/%d · %d songs queued",
			output.CurrentPage,
			output.TotalPages,
			output.TotalTracks,
		)
	}

	embed.Description = sb.String()
	return embed
}
