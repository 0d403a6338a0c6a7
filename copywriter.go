package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"google.golang.org/genai"
)

// Copywriter generates the short-form text around the capture flow:
// conversation prompts, nudge reminders and invite copy. Every call has a
// static fallback so the flows never block on the collaborator.
type Copywriter struct {
	client narrativeClient
	logger *log.Logger
}

// NewCopywriter creates a copywriter. client may be nil; all output then
// comes from the static fallbacks.
func NewCopywriter(client narrativeClient, logger *log.Logger) *Copywriter {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Copywriter{client: client, logger: logger}
}

// ContributorPrompts suggests four specific prompts to help someone
// record a message. The static list applies whenever the collaborator is
// unavailable or answers badly.
func (cw *Copywriter) ContributorPrompts(ctx context.Context, milestone MilestoneType, recipientName string) []string {
	prompt := fmt.Sprintf(`You are an emotionally intelligent host. Suggest 4 unique, highly specific prompts to help people record a video message for %s's %s.
Avoid clichés like "Happy Birthday."
Focus on:
- Hidden talents
- Lessons learned from them
- A funny "you had to be there" moment
- A wish for their legacy.`, recipientName, milestone)

	raw, err := cw.generate(ctx, prompt, stringListSchema())
	if err != nil {
		return append([]string(nil), fallbackPrompts...)
	}

	var prompts []string
	if err := json.Unmarshal(raw, &prompts); err != nil || len(prompts) == 0 {
		cw.logger.Printf("Warning: Failed to decode prompt list: %v", err)
		return append([]string(nil), fallbackPrompts...)
	}
	return prompts
}

// NudgeMessage writes a reminder for a contributor who has not submitted
// yet, in a funny and a heartfelt variant.
func (cw *Copywriter) NudgeMessage(ctx context.Context, recipientName string, milestone MilestoneType, deadline, tone string) NudgeCopy {
	fallback := NudgeCopy{
		Funny:     fmt.Sprintf("Just a quick nudge! %s is going to love this video, and it wouldn't be complete without you. You've got until %s!", recipientName, deadline),
		Heartfelt: fmt.Sprintf("Hi! We're almost done weaving together %s's tribute. It would mean so much to have your voice in there. Any chance you could record a quick clip by %s?", recipientName, deadline),
	}

	prompt := fmt.Sprintf(`Write a short, warm, but effective nudge message for someone who hasn't submitted their video for %s's %s yet.
The deadline is %s.
The project tone is %s.
Make it feel like a gentle reminder from a friend, not a corporate alert.
Provide two options: one that's funny/light and one that's more heartfelt.`, recipientName, milestone, deadline, tone)

	raw, err := cw.generate(ctx, prompt, stringFieldsSchema("funny", "heartfelt"))
	if err != nil {
		return fallback
	}

	var nudge NudgeCopy
	if err := json.Unmarshal(raw, &nudge); err != nil || nudge.Funny == "" || nudge.Heartfelt == "" {
		cw.logger.Printf("Warning: Failed to decode nudge copy: %v", err)
		return fallback
	}
	return nudge
}

// InviteMessage writes channel-specific invitation copy for a new
// contributor.
func (cw *Copywriter) InviteMessage(ctx context.Context, recipientName string, milestone MilestoneType) InviteCopy {
	fallback := InviteCopy{
		WhatsApp: fmt.Sprintf("Hey! I'm putting together a surprise video for %s's %s. Would love for you to add a quick 30-sec clip!", recipientName, milestone),
		Email:    fmt.Sprintf("Subject: Help us surprise %s!\n\nHi everyone,\n\nI'm creating a group tribute video for %s's %s. It would mean the world if you could record a short message.", recipientName, recipientName, milestone),
		Slack:    fmt.Sprintf("Hi Team! Let's celebrate %s's %s with a surprise group video. Please record a message by clicking the link!", recipientName, milestone),
	}

	prompt := fmt.Sprintf(`Write a short, warm, and clear invitation message for a group tribute video.
Recipient: %s
Occasion: %s
Style: Helpful, low-pressure, and exciting.
Provide three versions: one for WhatsApp (short), one for Email (detailed), and one for Slack/Teams (professional).`, recipientName, milestone)

	raw, err := cw.generate(ctx, prompt, stringFieldsSchema("whatsapp", "email", "slack"))
	if err != nil {
		return fallback
	}

	var invite InviteCopy
	if err := json.Unmarshal(raw, &invite); err != nil || invite.WhatsApp == "" {
		cw.logger.Printf("Warning: Failed to decode invite copy: %v", err)
		return fallback
	}
	return invite
}

func (cw *Copywriter) generate(ctx context.Context, prompt string, schema *genai.Schema) ([]byte, error) {
	if cw.client == nil || !cw.client.Available() {
		return nil, errModelUnavailable
	}
	raw, err := cw.client.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		cw.logger.Printf("Warning: Copy generation failed: %v", err)
		return nil, err
	}
	return raw, nil
}
