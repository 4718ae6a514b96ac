package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
)

// Discord caps message content at 2000 characters.
const discordLimit = 2000

type discordSender struct {
	session   *discordgo.Session
	channelID string
}

func newDiscordSender(cfg config.DiscordConfig) (*discordSender, error) {
	if cfg.BotToken == "" || cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord bot_token and channel_id are required")
	}
	session, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &discordSender{session: session, channelID: cfg.ChannelID}, nil
}

func (s *discordSender) Name() string { return "discord" }

func (s *discordSender) Send(ctx context.Context, text string) error {
	if r := []rune(text); len(r) > discordLimit {
		text = string(r[:discordLimit-3]) + "..."
	}
	if _, err := s.session.ChannelMessageSend(s.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending discord message: %w", err)
	}
	return nil
}
