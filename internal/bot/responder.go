package bot

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sends a response to an interaction.
	Respond(response *discordgo.InteractionResponse) error

	// Defer acknowledges the interaction so the handler may answer later with Edit.
	Defer() error

	// Edit replaces the deferred response.
	Edit(edit *discordgo.WebhookEdit) error

	// Deferred reports whether Defer succeeded, so the answer must go through Edit.
	Deferred() bool
}

// DiscordResponder implements Responder using a live Discord session.
type DiscordResponder struct {
	session     *discordgo.Session
	interaction *discordgo.Interaction

	mu       sync.Mutex
	deferred bool
}

// NewDiscordResponder creates a new DiscordResponder.
func NewDiscordResponder(s *discordgo.Session, i *discordgo.Interaction) *DiscordResponder {
	return &DiscordResponder{
		session:     s,
		interaction: i,
	}
}

// Respond sends a response to the interaction via Discord API.
func (r *DiscordResponder) Respond(response *discordgo.InteractionResponse) error {
	return r.session.InteractionRespond(r.interaction, response)
}

// Defer sends a "thinking" acknowledgement.
func (r *DiscordResponder) Defer() error {
	err := r.session.InteractionRespond(r.interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.deferred = true
	r.mu.Unlock()
	return nil
}

// Deferred reports whether Defer succeeded.
func (r *DiscordResponder) Deferred() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deferred
}

// Edit replaces the deferred response via Discord API.
func (r *DiscordResponder) Edit(edit *discordgo.WebhookEdit) error {
	_, err := r.session.InteractionResponseEdit(r.interaction, edit)
	return err
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	LastEdit     *discordgo.WebhookEdit
	Err          error

	deferred bool
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// Defer records that the interaction was deferred.
func (m *MockResponder) Defer() error {
	if m.Err != nil {
		return m.Err
	}
	m.deferred = true
	return nil
}

// Edit records the edit for testing.
func (m *MockResponder) Edit(edit *discordgo.WebhookEdit) error {
	m.LastEdit = edit
	return m.Err
}

// Deferred reports whether Defer was called successfully.
func (m *MockResponder) Deferred() bool {
	return m.deferred
}

// Embeds returns the embeds of the last response or edit.
func (m *MockResponder) Embeds() []*discordgo.MessageEmbed {
	if m.LastEdit != nil && m.LastEdit.Embeds != nil {
		return *m.LastEdit.Embeds
	}
	if m.LastResponse != nil && m.LastResponse.Data != nil {
		return m.LastResponse.Data.Embeds
	}
	return nil
}
