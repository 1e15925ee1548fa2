// Package notify posts batch run outcomes to a Discord channel webhook.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"scorecard/events"
	"scorecard/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Discord color constants
const (
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
)

// webhookExecutor is the part of *discordgo.Session used to post messages
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts a message for every ended run
type DiscordNotifier struct {
	session   webhookExecutor
	webhookID string
	token     string
}

// NewDiscordNotifier creates a notifier from a channel webhook URL
func NewDiscordNotifier(webhookURL string) (*DiscordNotifier, error) {
	id, token, err := ParseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution is authenticated by the token in the URL
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordNotifier{session: session, webhookID: id, token: token}, nil
}

// ParseWebhookURL extracts the webhook id and token from
// https://discord.com/api/webhooks/<id>/<token>
func ParseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid webhook URL: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", fmt.Errorf("invalid webhook URL: expected /api/webhooks/<id>/<token>")
}

// Subscribe posts a message whenever a run ends
func (n *DiscordNotifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeRunFinished, n.handleRunFinished)
}

func (n *DiscordNotifier) handleRunFinished(ctx context.Context, event events.Event) {
	ev, ok := event.(events.RunFinishedEvent)
	if !ok {
		return
	}
	if err := n.Notify(ctx, ev); err != nil {
		log.WithFields(log.Fields{
			"batchID": ev.BatchID,
			"error":   err,
		}).Warn("Failed to post run notification")
	}
}

// Notify posts the run outcome
func (n *DiscordNotifier) Notify(ctx context.Context, ev events.RunFinishedEvent) error {
	params := &discordgo.WebhookParams{
		Username: "scorecard",
		Embeds:   []*discordgo.MessageEmbed{buildRunEmbed(ev)},
	}
	if _, err := n.session.WebhookExecute(n.webhookID, n.token, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to execute webhook: %w", err)
	}
	return nil
}

// buildRunEmbed creates the embed describing an ended run
func buildRunEmbed(ev events.RunFinishedEvent) *discordgo.MessageEmbed {
	title := "✅ Scorecard run succeeded"
	color := ColorSuccess
	if ev.Status != models.RunStatusSuccess {
		title = "❌ Scorecard run failed"
		color = ColorDanger
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Run Date", Value: models.FormatRunDate(ev.RunDate), Inline: true},
		{Name: "Duration", Value: ev.Duration.Round(time.Millisecond).String(), Inline: true},
	}
	if ev.Message != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Details",
			Value:  truncate(ev.Message, 1024),
			Inline: false,
		})
	}

	return &discordgo.MessageEmbed{
		Title:  title,
		Color:  color,
		Fields: fields,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Batch " + ev.BatchID,
		},
	}
}

// truncate keeps a field within Discord's embed limits
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
