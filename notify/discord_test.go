package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"scorecard/events"
	"scorecard/models"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWebhookExecutor struct {
	mock.Mock
}

func (m *mockWebhookExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(webhookID, token, wait, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func TestParseWebhookURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantID    string
		wantToken string
		wantErr   bool
	}{
		{name: "discord", url: "https://discord.com/api/webhooks/123/abc-def", wantID: "123", wantToken: "abc-def"},
		{name: "versioned", url: "https://discord.com/api/v10/webhooks/123/abc/", wantID: "123", wantToken: "abc"},
		{name: "missing token", url: "https://discord.com/api/webhooks/123", wantErr: true},
		{name: "not a webhook", url: "https://example.com/hooks/123/abc", wantErr: true},
		{name: "unparsable", url: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, token, err := ParseWebhookURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestBuildRunEmbed(t *testing.T) {
	ev := events.RunFinishedEvent{
		BatchID:  "batch-1",
		RunDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:   models.RunStatusSuccess,
		Message:  "200 applications, 1 metrics files",
		Duration: 3*time.Second + 250*time.Millisecond + 400*time.Microsecond,
	}

	embed := buildRunEmbed(ev)
	assert.Equal(t, ColorSuccess, embed.Color)
	assert.Contains(t, embed.Title, "succeeded")
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "2025-01-01", embed.Fields[0].Value)
	assert.Equal(t, "3.25s", embed.Fields[1].Value)
	assert.Equal(t, ev.Message, embed.Fields[2].Value)
	assert.Equal(t, "Batch batch-1", embed.Footer.Text)

	ev.Status = models.RunStatusFailed
	ev.Message = strings.Repeat("x", 2000)
	embed = buildRunEmbed(ev)
	assert.Equal(t, ColorDanger, embed.Color)
	assert.Contains(t, embed.Title, "failed")
	assert.Len(t, []rune(embed.Fields[2].Value), 1024)
}

func TestDiscordNotifier_NotifiesOnRunFinished(t *testing.T) {
	session := new(mockWebhookExecutor)
	n := &DiscordNotifier{session: session, webhookID: "123", token: "abc"}

	done := make(chan struct{})
	session.On("WebhookExecute", "123", "abc", false, mock.MatchedBy(func(p *discordgo.WebhookParams) bool {
		return len(p.Embeds) == 1 && p.Embeds[0].Color == ColorDanger
	})).Run(func(mock.Arguments) { close(done) }).Return(nil, nil)

	bus := events.NewBus()
	n.Subscribe(bus)
	bus.Emit(context.Background(), events.RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusFailed, Message: "step clean failed"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not executed")
	}
	session.AssertExpectations(t)
}

func TestDiscordNotifier_NotifyError(t *testing.T) {
	session := new(mockWebhookExecutor)
	n := &DiscordNotifier{session: session, webhookID: "123", token: "abc"}
	session.On("WebhookExecute", "123", "abc", false, mock.Anything).Return(nil, errors.New("rate limited"))

	err := n.Notify(context.Background(), events.RunFinishedEvent{BatchID: "batch-1", Status: models.RunStatusSuccess})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNewDiscordNotifier(t *testing.T) {
	n, err := NewDiscordNotifier("https://discord.com/api/webhooks/123/abc")
	require.NoError(t, err)
	assert.Equal(t, "123", n.webhookID)
	assert.Equal(t, "abc", n.token)

	_, err = NewDiscordNotifier("https://discord.com/api/channels/1")
	assert.Error(t, err)
}
