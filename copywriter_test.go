package main

import (
	"context"
	"strings"
	"testing"
)

func TestContributorPromptsFallback(t *testing.T) {
	cw := NewCopywriter(nil, nil)
	prompts := cw.ContributorPrompts(context.Background(), MilestoneBirthday, "Nana")

	if len(prompts) != len(fallbackPrompts) {
		t.Fatalf("got %d prompts, want %d", len(prompts), len(fallbackPrompts))
	}
	for i, p := range prompts {
		if p != fallbackPrompts[i] {
			t.Errorf("prompt %d = %q, want fallback", i, p)
		}
	}

	// The fallback slice itself must not be aliased out.
	prompts[0] = "mutated"
	again := cw.ContributorPrompts(context.Background(), MilestoneBirthday, "Nana")
	if again[0] == "mutated" {
		t.Error("fallback prompts aliased to caller slice")
	}
}

func TestContributorPromptsFromCollaborator(t *testing.T) {
	client := &stubNarrative{available: true, responses: []stubResponse{
		{raw: []byte(`["What did she teach you?", "Best shared meal?"]`)},
	}}
	cw := NewCopywriter(client, nil)

	prompts := cw.ContributorPrompts(context.Background(), MilestoneBirthday, "Nana")
	if len(prompts) != 2 || prompts[0] != "What did she teach you?" {
		t.Errorf("unexpected prompts: %v", prompts)
	}
}

func TestNudgeMessageFallbackInterpolates(t *testing.T) {
	cw := NewCopywriter(nil, nil)
	nudge := cw.NudgeMessage(context.Background(), "Nana", MilestoneBirthday, "Friday", "warm")

	if !strings.Contains(nudge.Funny, "Nana") || !strings.Contains(nudge.Funny, "Friday") {
		t.Errorf("funny nudge missing interpolation: %q", nudge.Funny)
	}
	if !strings.Contains(nudge.Heartfelt, "Nana") {
		t.Errorf("heartfelt nudge missing recipient: %q", nudge.Heartfelt)
	}
}

func TestNudgeMessageRejectsPartialResponse(t *testing.T) {
	client := &stubNarrative{available: true, responses: []stubResponse{
		{raw: []byte(`{"funny": "ha", "heartfelt": ""}`)},
	}}
	cw := NewCopywriter(client, nil)

	nudge := cw.NudgeMessage(context.Background(), "Nana", MilestoneBirthday, "Friday", "warm")
	if nudge.Funny == "ha" {
		t.Error("partial nudge copy accepted")
	}
}

func TestInviteMessageFallback(t *testing.T) {
	cw := NewCopywriter(nil, nil)
	invite := cw.InviteMessage(context.Background(), "Ravi", MilestoneRetirement)

	if !strings.Contains(invite.WhatsApp, "Ravi") {
		t.Errorf("whatsapp copy missing recipient: %q", invite.WhatsApp)
	}
	if !strings.Contains(invite.Email, "Retirement") {
		t.Errorf("email copy missing milestone: %q", invite.Email)
	}
	if invite.Slack == "" {
		t.Error("slack copy empty")
	}
}
