package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
)

type slackSender struct {
	api     *slack.Client
	channel string
}

func newSlackSender(cfg config.SlackConfig, opts ...slack.Option) (*slackSender, error) {
	if cfg.BotToken == "" || cfg.Channel == "" {
		return nil, fmt.Errorf("slack bot_token and channel are required")
	}
	return &slackSender{
		api:     slack.New(cfg.BotToken, opts...),
		channel: cfg.Channel,
	}, nil
}

func (s *slackSender) Name() string { return "slack" }

func (s *slackSender) Send(ctx context.Context, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("sending slack message: %w", err)
	}
	return nil
}
