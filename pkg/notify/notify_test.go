package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/slack-go/slack"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

type fakeSender struct {
	name string
	err  error
	sent []string
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(ctx context.Context, text string) error {
	f.sent = append(f.sent, text)
	return f.err
}

func sampleOpps(n int) []venues.Opportunity {
	out := make([]venues.Opportunity, n)
	for i := range out {
		out[i] = venues.Opportunity{
			Type:        venues.OpportunitySeekingArtists,
			Description: fmt.Sprintf("lead %d", i+1),
		}
	}
	return out
}

func TestFormatOpportunities(t *testing.T) {
	opps := []venues.Opportunity{
		{Type: venues.OpportunitySeekingArtists, VenueName: "The Anchor", Description: "Seeking local musicians", SuitableActs: []string{"Duo"}},
		{Type: venues.OpportunityGoodPay, Description: strings.Repeat("x", 300)},
	}
	text := FormatOpportunities(opps)

	if !strings.HasPrefix(text, "Venue Scout: 2 new booking opportunities") {
		t.Fatalf("header = %q", text)
	}
	if !strings.Contains(text, "• Seeking artists at The Anchor: Seeking local musicians (Duo)") {
		t.Errorf("first line missing: %q", text)
	}
	if !strings.Contains(text, "• Good pay: "+strings.Repeat("x", maxDescription)+"...") {
		t.Errorf("long description should be truncated: %q", text)
	}

	one := FormatOpportunities(sampleOpps(1))
	if !strings.HasPrefix(one, "Venue Scout: 1 new booking opportunity\n") {
		t.Errorf("singular header = %q", one)
	}

	many := FormatOpportunities(sampleOpps(MaxListed + 2))
	if !strings.HasSuffix(many, "...and 2 more") || strings.Contains(many, "lead 11") {
		t.Errorf("list should be capped: %q", many)
	}
}

func TestNotifyTriesEveryChannel(t *testing.T) {
	ok := &fakeSender{name: "ok"}
	broken := &fakeSender{name: "broken", err: errors.New("token revoked")}
	n := NewWithSenders(nil, broken, ok)

	err := n.NotifyOpportunities(context.Background(), sampleOpps(2))
	if err == nil || !strings.Contains(err.Error(), "broken: token revoked") {
		t.Fatalf("err = %v", err)
	}
	if len(ok.sent) != 1 || len(broken.sent) != 1 {
		t.Fatalf("sent ok=%d broken=%d", len(ok.sent), len(broken.sent))
	}

	if err := n.NotifyOpportunities(context.Background(), nil); err != nil {
		t.Fatalf("empty list should be a no-op: %v", err)
	}
	if len(ok.sent) != 1 {
		t.Fatal("nothing should be sent for an empty list")
	}
}

func TestNewSkipsDisabledChannels(t *testing.T) {
	cfg := config.NotificationsConfig{
		Slack:   config.SlackConfig{Enabled: false, BotToken: "xoxb"},
		Discord: config.DiscordConfig{Enabled: true, BotToken: "token", ChannelID: "123"},
	}
	n, err := New(nil, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Channels(); len(got) != 1 || got[0] != "discord" {
		t.Fatalf("Channels() = %v", got)
	}

	var none *Notifier
	if err := none.NotifyOpportunities(context.Background(), sampleOpps(1)); err != nil {
		t.Fatalf("nil notifier: %v", err)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	tests := []config.NotificationsConfig{
		{Slack: config.SlackConfig{Enabled: true, BotToken: "xoxb"}},
		{Telegram: config.TelegramConfig{Enabled: true, BotToken: "t"}},
		{Discord: config.DiscordConfig{Enabled: true, ChannelID: "1"}},
	}
	for i, cfg := range tests {
		if _, err := New(nil, cfg); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestSlackSender(t *testing.T) {
	var channel, text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat.postMessage") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = r.ParseForm()
		channel = r.FormValue("channel")
		text = r.FormValue("text")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	defer server.Close()

	s, err := newSlackSender(config.SlackConfig{BotToken: "xoxb-test", Channel: "C123"}, slack.OptionAPIURL(server.URL+"/"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if channel != "C123" || text != "hello" {
		t.Fatalf("posted channel=%q text=%q", channel, text)
	}
}

func TestTelegramSender(t *testing.T) {
	var chatID, text string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"scout","username":"scout_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseForm()
			chatID = r.FormValue("chat_id")
			text = r.FormValue("text")
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":42,"type":"private"},"text":"hello"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	s, err := newTelegramSender(config.TelegramConfig{BotToken: "123:abc", ChatID: 42})
	if err != nil {
		t.Fatal(err)
	}
	s.endpoint = server.URL + "/bot%s/%s"

	if err := s.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if chatID != "42" || text != "hello" {
		t.Fatalf("sent chat_id=%q text=%q", chatID, text)
	}
}
