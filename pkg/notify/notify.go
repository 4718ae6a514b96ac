// Package notify pushes newly found booking opportunities to chat channels.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/logger"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

// Sender delivers a text message to one channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// MaxListed caps how many opportunities one message lists.
const MaxListed = 10

const maxDescription = 200

// Notifier fans a summary out to every enabled channel.
type Notifier struct {
	log     *logger.Logger
	senders []Sender
}

// New builds a Notifier for the enabled channels in cfg. A channel that is
// enabled but missing credentials is an error.
func New(log *logger.Logger, cfg config.NotificationsConfig) (*Notifier, error) {
	var senders []Sender

	if cfg.Slack.Enabled {
		s, err := newSlackSender(cfg.Slack)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.Telegram.Enabled {
		s, err := newTelegramSender(cfg.Telegram)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.Discord.Enabled {
		s, err := newDiscordSender(cfg.Discord)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}

	return NewWithSenders(log, senders...), nil
}

// NewWithSenders builds a Notifier from explicit senders.
func NewWithSenders(log *logger.Logger, senders ...Sender) *Notifier {
	if log == nil {
		log = logger.Nop()
	}
	return &Notifier{log: log, senders: senders}
}

// Channels returns the names of the configured senders.
func (n *Notifier) Channels() []string {
	names := make([]string, 0, len(n.senders))
	for _, s := range n.senders {
		names = append(names, s.Name())
	}
	return names
}

// NotifyOpportunities sends one summary per channel. Every channel is
// tried; failures are logged and returned joined.
func (n *Notifier) NotifyOpportunities(ctx context.Context, opps []venues.Opportunity) error {
	if n == nil || len(n.senders) == 0 || len(opps) == 0 {
		return nil
	}

	text := FormatOpportunities(opps)
	var errs []error
	for _, s := range n.senders {
		if err := s.Send(ctx, text); err != nil {
			n.log.Warn("Notification failed", zap.String("channel", s.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		n.log.Info("Notification sent", zap.String("channel", s.Name()), zap.Int("opportunities", len(opps)))
	}
	return errors.Join(errs...)
}

// FormatOpportunities renders the plain-text summary message.
func FormatOpportunities(opps []venues.Opportunity) string {
	var b strings.Builder
	noun := "opportunities"
	if len(opps) == 1 {
		noun = "opportunity"
	}
	fmt.Fprintf(&b, "Venue Scout: %d new booking %s\n", len(opps), noun)

	for i, o := range opps {
		if i == MaxListed {
			fmt.Fprintf(&b, "\n...and %d more", len(opps)-MaxListed)
			break
		}
		b.WriteString("\n")
		b.WriteString("• ")
		b.WriteString(label(o.Type))
		if o.VenueName != "" {
			b.WriteString(" at ")
			b.WriteString(o.VenueName)
		}
		b.WriteString(": ")
		b.WriteString(truncate(o.Description, maxDescription))
		if len(o.SuitableActs) > 0 {
			b.WriteString(" (")
			b.WriteString(strings.Join(o.SuitableActs, ", "))
			b.WriteString(")")
		}
	}
	return b.String()
}

func label(kind string) string {
	switch kind {
	case venues.OpportunitySeekingArtists:
		return "Seeking artists"
	case venues.OpportunityGoodPay:
		return "Good pay"
	default:
		return strings.ReplaceAll(kind, "_", " ")
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
