package bot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Embed colors for fallback responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xFF0000
)

// ErrHandlerPanic wraps a panic recovered from a command handler.
var ErrHandlerPanic = errors.New("command handler panicked")

// Route is a slash command bound to the module that owns it.
type Route struct {
	Module  string
	Handler InteractionHandler
}

// Hook decorates the handler of one route. The returned handler must call
// route.Handler to run the command.
type Hook func(command string, route Route) InteractionHandler

// Router dispatches application command interactions to their handlers.
type Router struct {
	handlers map[string]InteractionHandler
}

// NewRouter wraps every route with hooks, the first hook outermost.
func NewRouter(routes map[string]Route, hooks ...Hook) *Router {
	handlers := make(map[string]InteractionHandler, len(routes))
	for command, route := range routes {
		for i := len(hooks) - 1; i >= 0; i-- {
			route.Handler = hooks[i](command, route)
		}
		handlers[command] = route.Handler
	}
	return &Router{handlers: handlers}
}

// Handle is the session's InteractionCreate handler.
func (r *Router) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	r.Dispatch(s, i, NewDiscordResponder(s, i.Interaction))
}

// Dispatch runs the command's handler. A handler error is answered with a
// generic error embed, edited into the response if it was already deferred.
func (r *Router) Dispatch(s *discordgo.Session, i *discordgo.InteractionCreate, responder Responder) {
	command := i.ApplicationCommandData().Name
	handler, ok := r.handlers[command]
	if !ok {
		slog.Warn("found no handler for command", "command", command)
		fallback(responder, "Unknown Command", "This command is not recognized.", colorYellow)
		return
	}

	if err := handler(s, i, responder); err != nil {
		fallback(responder, "Error", "An error occurred while processing your command.", colorRed)
	}
}

func fallback(r Responder, title, description string, color int) {
	embeds := []*discordgo.MessageEmbed{{
		Title:       title,
		Description: description,
		Color:       color,
	}}

	var err error
	if r.Deferred() {
		err = r.Edit(&discordgo.WebhookEdit{Embeds: &embeds})
	} else {
		err = r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Embeds: embeds},
		})
	}
	if err != nil {
		slog.Error("failed to send fallback response", "title", title, "error", err)
	}
}

// LogCommands logs each command with its invoking user before it runs, and
// its outcome after.
func LogCommands(command string, route Route) InteractionHandler {
	next := route.Handler
	return func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		user := interactionUser(i)
		slog.Info(
			"received command",
			"command", command,
			"module", route.Module,
			"user", user,
			"guild", i.GuildID,
		)
		start := time.Now()

		if err := next(s, i, r); err != nil {
			slog.Error(
				"failed to handle command",
				"command", command,
				"user", user,
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}

		slog.Info("handled command", "command", command, "user", user, "duration", time.Since(start))
		return nil
	}
}

// RecoverPanics turns a panicking handler into an ErrHandlerPanic error.
func RecoverPanics(command string, route Route) InteractionHandler {
	next := route.Handler
	return func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: /%s: %v", ErrHandlerPanic, command, p)
			}
		}()
		return next(s, i, r)
	}
}

// interactionUser returns the username of whoever invoked the interaction.
func interactionUser(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.Username
	case i.User != nil:
		return i.User.Username
	default:
		return ""
	}
}
