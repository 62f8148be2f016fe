package stubapi

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/talentloop/portal/internal/core/ports"
)

// Outbox stands in for a mail provider: mails are logged and kept in memory
// so a developer can read reset codes from the console.
type Outbox struct {
	mu   sync.Mutex
	msgs []ports.EmailMessage
	log  zerolog.Logger
}

func NewOutbox(log zerolog.Logger) *Outbox {
	return &Outbox{log: log}
}

func (o *Outbox) Add(msg ports.EmailMessage) {
	o.mu.Lock()
	o.msgs = append(o.msgs, msg)
	o.mu.Unlock()

	o.log.Info().
		Str("to", msg.To).
		Str("template", msg.Template).
		Interface("data", msg.Data).
		Msg("mail sent")
}

// Messages returns a copy of everything sent so far.
func (o *Outbox) Messages() []ports.EmailMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]ports.EmailMessage, len(o.msgs))
	copy(out, o.msgs)
	return out
}

// Last returns the most recent mail to the recipient.
func (o *Outbox) Last(to string) (ports.EmailMessage, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].To == to {
			return o.msgs[i], true
		}
	}
	return ports.EmailMessage{}, false
}
