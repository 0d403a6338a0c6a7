package main

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	return &App{
		store:        NewProjectStore("", logger),
		sequencer:    NewSequencer(nil, nil, logger),
		copywriter:   NewCopywriter(nil, logger),
		device:       &syntheticDevice{label: "test-cam"},
		logger:       logger,
		boardHandles: make(map[string][]*MediaHandle),
	}
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	text := ""
	if len(res.Content) > 0 {
		if tc, ok := res.Content[0].(mcp.TextContent); ok {
			text = tc.Text
		}
	}
	return res, text
}

func seedProjectWithMemories(t *testing.T, app *App) *Project {
	t.Helper()
	project := app.store.CreateProject("Nana's 80th", "Nana", MilestoneBirthday, "2026-10-01", "")
	for _, name := range []string{"Maria", "Sam"} {
		contributor, err := app.store.AddContributor(project.ID, name, "", "")
		if err != nil {
			t.Fatal(err)
		}
		err = app.store.AddMemory(project.ID, contributor.ID, Memory{
			ID: "mem-" + name, Type: MediaVideo, Transcript: name + " remembers", CreatedAt: timeNow(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	return project
}

func TestSequenceToolInstallsFallbackBoard(t *testing.T) {
	app := newTestApp(t)
	project := seedProjectWithMemories(t, app)

	res, text := callTool(t, app.sequenceStoryboardHandler, map[string]any{"project": project.ID})
	if res.IsError {
		t.Fatalf("sequencing failed: %s", text)
	}
	if !strings.Contains(text, "heuristic") {
		t.Errorf("result does not mention the fallback path: %q", text)
	}

	refreshed, err := app.store.GetProject(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(refreshed.Storyboard) != 2 {
		t.Fatalf("storyboard has %d segments, want 2", len(refreshed.Storyboard))
	}
	if refreshed.Status != StatusReviewing {
		t.Errorf("status = %s, want %s", refreshed.Status, StatusReviewing)
	}
	if refreshed.Tone != FallbackTone {
		t.Errorf("tone = %q, want fallback", refreshed.Tone)
	}
}

func TestSequenceToolArchivesPreviousCut(t *testing.T) {
	app := newTestApp(t)
	project := seedProjectWithMemories(t, app)

	callTool(t, app.sequenceStoryboardHandler, map[string]any{"project": project.ID})
	callTool(t, app.sequenceStoryboardHandler, map[string]any{"project": project.ID})

	res, text := callTool(t, app.storyboardHistoryHandler, map[string]any{"project": project.ID})
	if res.IsError {
		t.Fatalf("history failed: %s", text)
	}
	if !strings.Contains(text, "Cut 1") {
		t.Errorf("history missing first archived cut: %q", text)
	}
	history, err := app.store.History(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 {
		t.Errorf("history entries = %d, want 1", len(history))
	}
}

func TestReorderToolKeepsCutWithoutCollaborator(t *testing.T) {
	app := newTestApp(t)
	project := seedProjectWithMemories(t, app)
	callTool(t, app.sequenceStoryboardHandler, map[string]any{"project": project.ID})

	before, _ := app.store.GetProject(project.ID)
	wantFirst := before.Storyboard[0].ID

	res, text := callTool(t, app.reorderStoryboardHandler, map[string]any{
		"project": project.ID, "instruction": "end on the funny one",
	})
	if !res.IsError {
		t.Fatalf("expected reorder to report failure, got: %s", text)
	}
	if !strings.Contains(text, "unchanged") {
		t.Errorf("failure message does not say the cut is kept: %q", text)
	}

	after, _ := app.store.GetProject(project.ID)
	if after.Storyboard[0].ID != wantFirst {
		t.Error("storyboard changed despite failed reorder")
	}
}

func TestProduceFilmRequiresStoryboard(t *testing.T) {
	app := newTestApp(t)
	project := app.store.CreateProject("", "Nana", MilestoneBirthday, "", "")

	res, _ := callTool(t, app.produceFilmHandler, map[string]any{"project": project.ID})
	if !res.IsError {
		t.Error("produce accepted a project with no storyboard")
	}

	seeded := seedProjectWithMemories(t, app)
	callTool(t, app.sequenceStoryboardHandler, map[string]any{"project": seeded.ID})
	res, text := callTool(t, app.produceFilmHandler, map[string]any{"project": seeded.ID})
	if res.IsError {
		t.Fatalf("produce failed: %s", text)
	}
	refreshed, _ := app.store.GetProject(seeded.ID)
	if refreshed.Status != StatusReady {
		t.Errorf("status = %s, want %s", refreshed.Status, StatusReady)
	}
	for _, step := range renderSteps {
		if !strings.Contains(text, step) {
			t.Errorf("render narration missing step %q", step)
		}
	}
}

func TestRecordMemoryTool(t *testing.T) {
	app := newTestApp(t)
	app.media = openTestMediaStore(t)
	project := app.store.CreateProject("", "Nana", MilestoneBirthday, "", "")
	contributor, err := app.store.AddContributor(project.ID, "Maria", "Daughter", "")
	if err != nil {
		t.Fatal(err)
	}

	res, text := callTool(t, app.recordMemoryHandler, map[string]any{
		"project": project.ID, "contributor": "Maria",
	})
	if res.IsError {
		t.Fatalf("record failed: %s", text)
	}

	refreshed, _ := app.store.GetProject(project.ID)
	if refreshed.Contributors[0].Status != ContributorSubmitted {
		t.Errorf("contributor status = %s", refreshed.Contributors[0].Status)
	}
	key := project.ID + "/" + contributor.ID + "/video"
	if !app.media.Exists(key) {
		t.Error("recorded blob not persisted")
	}
}

func TestInviteAndNudgeTools(t *testing.T) {
	app := newTestApp(t)
	project := app.store.CreateProject("", "Nana", MilestoneBirthday, "Friday", "")

	res, text := callTool(t, app.inviteContributorHandler, map[string]any{
		"project": project.ID, "name": "Uncle Dave",
	})
	if res.IsError {
		t.Fatalf("invite failed: %s", text)
	}
	if !strings.Contains(text, "Uncle Dave") || !strings.Contains(text, "WhatsApp") {
		t.Errorf("invite result missing copy: %q", text)
	}

	res, text = callTool(t, app.nudgeContributorHandler, map[string]any{
		"project": project.ID, "contributor": "Uncle Dave",
	})
	if res.IsError {
		t.Fatalf("nudge failed: %s", text)
	}
	if !strings.Contains(text, "Funny:") || !strings.Contains(text, "Heartfelt:") {
		t.Errorf("nudge result missing variants: %q", text)
	}

	refreshed, _ := app.store.GetProject(project.ID)
	if refreshed.Contributors[0].LastRemindedAt == nil {
		t.Error("nudge did not stamp the reminder time")
	}
}

func TestSearchToolWithoutIndex(t *testing.T) {
	app := newTestApp(t)
	_, text := callTool(t, app.searchMemoriesHandler, map[string]any{"query": "lemon cake"})
	if text != RecallEmptyMsg {
		t.Errorf("empty-index result = %q, want %q", text, RecallEmptyMsg)
	}
}
