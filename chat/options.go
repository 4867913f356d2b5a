package chat

import "github.com/SashaMusina22/sysprog-hse/internal/enginelog"

// Options configures a Server or Client. The zero value is valid and
// logs nothing.
type Options struct {
	Logger *enginelog.Logger
}

// Event bits reported by Server.Events and Client.Events.
const (
	EventInput  = 1 << 0
	EventOutput = 1 << 1
)
