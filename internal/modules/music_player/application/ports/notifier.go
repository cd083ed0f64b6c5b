package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// Notifier sends short text messages to a channel.
// Notify is fire-and-forget: failures are logged, never returned.
type Notifier interface {
	Notify(channelID snowflake.ID, text string)
}
