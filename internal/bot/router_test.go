package bot

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func commandInteraction(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:    discordgo.InteractionApplicationCommand,
			GuildID: "1",
			Member:  &discordgo.Member{User: &discordgo.User{Username: "spike"}},
			Data:    discordgo.ApplicationCommandInteractionData{Name: name},
		},
	}
}

func TestRouter_Dispatch(t *testing.T) {
	handlerErr := errors.New("handler failed")

	tests := []struct {
		name      string
		command   string
		handler   InteractionHandler
		wantTitle string
		wantColor int
		wantEdit  bool
	}{
		{
			name:    "handler answers",
			command: "play",
			handler: func(_ *discordgo.Session, _ *discordgo.InteractionCreate, r Responder) error {
				return r.Respond(&discordgo.InteractionResponse{
					Type: discordgo.InteractionResponseChannelMessageWithSource,
					Data: &discordgo.InteractionResponseData{Content: "ok"},
				})
			},
		},
		{
			name:      "unknown command",
			command:   "dance",
			wantTitle: "Unknown Command",
			wantColor: colorYellow,
		},
		{
			name:    "error before deferring",
			command: "play",
			handler: func(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
				return handlerErr
			},
			wantTitle: "Error",
			wantColor: colorRed,
		},
		{
			name:    "error after deferring edits the reply",
			command: "play",
			handler: func(_ *discordgo.Session, _ *discordgo.InteractionCreate, r Responder) error {
				if err := r.Defer(); err != nil {
					return err
				}
				return handlerErr
			},
			wantTitle: "Error",
			wantColor: colorRed,
			wantEdit:  true,
		},
		{
			name:    "panicking handler",
			command: "play",
			handler: func(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
				panic("nil track")
			},
			wantTitle: "Error",
			wantColor: colorRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes := map[string]Route{}
			if tt.handler != nil {
				routes["play"] = Route{Module: "music_player", Handler: tt.handler}
			}
			router := NewRouter(routes, LogCommands, RecoverPanics)
			responder := &MockResponder{}

			router.Dispatch(nil, commandInteraction(tt.command), responder)

			if tt.wantTitle == "" {
				if responder.LastResponse == nil || responder.LastResponse.Data.Content != "ok" {
					t.Errorf("expected the handler's own response, got %+v", responder.LastResponse)
				}
				return
			}

			if tt.wantEdit && responder.LastEdit == nil {
				t.Fatal("expected the deferred reply to be edited")
			}
			if !tt.wantEdit && responder.LastEdit != nil {
				t.Error("expected a direct response, got an edit")
			}

			embeds := responder.Embeds()
			if len(embeds) != 1 {
				t.Fatalf("expected 1 embed, got %d", len(embeds))
			}
			if embeds[0].Title != tt.wantTitle || embeds[0].Color != tt.wantColor {
				t.Errorf("expected %q in %#x, got %q in %#x",
					tt.wantTitle, tt.wantColor, embeds[0].Title, embeds[0].Color)
			}
		})
	}
}

func TestNewRouter_HookOrder(t *testing.T) {
	var order []string
	hook := func(tag string) Hook {
		return func(command string, route Route) InteractionHandler {
			next := route.Handler
			return func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
				order = append(order, tag+":"+command+"@"+route.Module)
				return next(s, i, r)
			}
		}
	}

	router := NewRouter(map[string]Route{
		"skip": {Module: "music_player", Handler: func(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
			order = append(order, "handler")
			return nil
		}},
	}, hook("outer"), hook("inner"))

	router.Dispatch(nil, commandInteraction("skip"), &MockResponder{})

	want := []string{"outer:skip@music_player", "inner:skip@music_player", "handler"}
	if !slices.Equal(order, want) {
		t.Errorf("expected %v, got %v", want, order)
	}
}

func TestRecoverPanics(t *testing.T) {
	handler := RecoverPanics("stop", Route{Handler: func(*discordgo.Session, *discordgo.InteractionCreate, Responder) error {
		panic("boom")
	}})

	err := handler(nil, commandInteraction("stop"), &MockResponder{})
	if !errors.Is(err, ErrHandlerPanic) {
		t.Fatalf("expected ErrHandlerPanic, got %v", err)
	}
	if !strings.Contains(err.Error(), "/stop") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected command and panic value in %q", err.Error())
	}
}

func TestInteractionUser(t *testing.T) {
	tests := []struct {
		name        string
		interaction *discordgo.InteractionCreate
		want        string
	}{
		{
			name: "guild member",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				Member: &discordgo.Member{User: &discordgo.User{Username: "spike"}},
			}},
			want: "spike",
		},
		{
			name: "direct message user",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				User: &discordgo.User{Username: "faye"},
			}},
			want: "faye",
		},
		{
			name:        "unknown",
			interaction: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := interactionUser(tt.interaction); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
