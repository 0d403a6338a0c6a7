package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"google.golang.org/genai"
)

// App wires the stores, the sequencer and the copywriter behind the tool
// surface. It also owns the minted storyboard media handles per project,
// releasing the previous set whenever a new cut is installed.
type App struct {
	config     *Config
	store      *ProjectStore
	media      *MediaStore
	recall     *RecallIndex
	sequencer  *Sequencer
	copywriter *Copywriter
	device     CaptureDevice
	logger     *log.Logger
	testMode   bool

	handleMu     sync.Mutex
	boardHandles map[string][]*MediaHandle
}

// swapBoardHandles replaces a project's storyboard handles, releasing the
// old set.
func (a *App) swapBoardHandles(projectID string, handles []*MediaHandle) {
	a.handleMu.Lock()
	old := a.boardHandles[projectID]
	a.boardHandles[projectID] = handles
	a.handleMu.Unlock()

	for _, h := range old {
		h.Release()
	}
}

// releaseAllBoardHandles releases every minted storyboard handle.
func (a *App) releaseAllBoardHandles() {
	a.handleMu.Lock()
	all := a.boardHandles
	a.boardHandles = make(map[string][]*MediaHandle)
	a.handleMu.Unlock()

	for _, handles := range all {
		for _, h := range handles {
			h.Release()
		}
	}
}

func main() {
	testMode := flag.Bool("t", false, "Run in interactive CLI test mode")
	modelFlag := flag.String("model", "", "Override the narrative model")
	dataFlag := flag.String("data", "", "Override the data directory")
	flag.Parse()

	ctx := context.Background()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := LoadConfig(logger)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *modelFlag != "" {
		cfg.Gemini.NarrativeModel = *modelFlag
	}
	if *dataFlag != "" {
		cfg.DataDir = *dataFlag
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}

	// The inference credential is optional. Without it sequencing uses the
	// deterministic fallback, copywriting uses static text and semantic
	// recall is unavailable; everything else works.
	var client *genai.Client
	var recall *RecallIndex
	if cfg.Gemini.APIKey != "" {
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			logger.Printf("Warning: Failed to create GenAI client, running degraded: %v", err)
			client = nil
		}
	} else {
		logger.Println("GEMINI_API_KEY not set; running with deterministic fallbacks")
	}
	if client != nil {
		embFunc := makeGeminiEmbedder(cfg.Gemini.EmbeddingModel, client)
		recall, err = NewRecallIndex(filepath.Join(cfg.DataDir, "recall"), embFunc, logger)
		if err != nil {
			logger.Printf("Warning: Recall index unavailable: %v", err)
			recall = nil
		}
	}

	media, err := OpenMediaStore(filepath.Join(cfg.DataDir, MediaDBDir), logger)
	if err != nil {
		logger.Printf("Warning: Media store unavailable, running degraded: %v", err)
		media = nil
	} else {
		defer media.Close()
	}

	store := NewProjectStore(filepath.Join(cfg.DataDir, ProjectDataFile), logger)

	var narrative narrativeClient
	if client != nil {
		narrative = &geminiNarrative{client: client, model: cfg.Gemini.NarrativeModel}
	}

	app := &App{
		config:       cfg,
		store:        store,
		media:        media,
		recall:       recall,
		sequencer:    NewSequencer(narrative, media, logger),
		copywriter:   NewCopywriter(narrative, logger),
		device:       &syntheticDevice{label: "default-cam"},
		logger:       logger,
		testMode:     *testMode,
		boardHandles: make(map[string][]*MediaHandle),
	}
	defer app.releaseAllBoardHandles()

	if *testMode {
		app.runInteractiveCLI(ctx)
		return
	}

	s := server.NewMCPServer(ServerName, ServerVersion)

	// --- Tool Registration ---

	s.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Creates a new tribute video project for a recipient and milestone."),
		mcp.WithString("recipient", mcp.Required(), mcp.Description("Who the tribute is for")),
		mcp.WithString("milestone", mcp.Description("Occasion: Birthday, Retirement, Anniversary, Memorial, Wedding, Graduation or Team Sendoff")),
		mcp.WithString("title", mcp.Description("Optional project title")),
		mcp.WithString("deadline", mcp.Description("Submission deadline")),
		mcp.WithString("theme", mcp.Description("Visual theme")),
	), app.createProjectHandler)

	s.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("Lists all tribute projects with their status and progress."),
	), app.listProjectsHandler)

	s.AddTool(mcp.NewTool("invite_contributor",
		mcp.WithDescription("Invites a contributor to a project and drafts channel-specific invitation copy."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Contributor name")),
		mcp.WithString("relationship", mcp.Description("Relationship to the recipient")),
		mcp.WithString("email", mcp.Description("Contributor email")),
	), app.inviteContributorHandler)

	s.AddTool(mcp.NewTool("nudge_contributor",
		mcp.WithDescription("Drafts a reminder for a contributor who hasn't submitted yet."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("contributor", mcp.Required(), mcp.Description("Contributor ID or name")),
	), app.nudgeContributorHandler)

	s.AddTool(mcp.NewTool("record_memory",
		mcp.WithDescription("Runs the guided capture flow for a contributor and stores the resulting testimony."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("contributor", mcp.Required(), mcp.Description("Contributor ID or name")),
		mcp.WithNumber("prompt_index", mcp.Description("Which suggested prompt to answer (default 0)")),
	), app.recordMemoryHandler)

	s.AddTool(mcp.NewTool("upload_asset",
		mcp.WithDescription("Adds a photo, video or audio clip to the project's community library."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("contributor", mcp.Description("Contributor name")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Asset title")),
		mcp.WithString("description", mcp.Description("Backstory for the asset")),
		mcp.WithString("media_type", mcp.Description("photo, video or audio (default photo)")),
		mcp.WithString("content", mcp.Description("Raw content to store")),
	), app.uploadAssetHandler)

	s.AddTool(mcp.NewTool("comment_asset",
		mcp.WithDescription("Leaves a memory spark on a community asset."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("asset", mcp.Required(), mcp.Description("Asset ID")),
		mcp.WithString("author", mcp.Description("Comment author")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Comment text")),
	), app.commentAssetHandler)

	s.AddTool(mcp.NewTool("sequence_storyboard",
		mcp.WithDescription("Weaves all submissions into an ordered, annotated storyboard, archiving the previous cut."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
	), app.sequenceStoryboardHandler)

	s.AddTool(mcp.NewTool("reorder_storyboard",
		mcp.WithDescription("Re-sequences the current storyboard from a free-text instruction, keeping the same segments."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
		mcp.WithString("instruction", mcp.Required(), mcp.Description("How to reorder, e.g. 'end on the funny one'")),
	), app.reorderStoryboardHandler)

	s.AddTool(mcp.NewTool("storyboard_history",
		mcp.WithDescription("Lists a project's archived storyboard cuts."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
	), app.storyboardHistoryHandler)

	s.AddTool(mcp.NewTool("produce_film",
		mcp.WithDescription("Stages the final render and marks the project ready."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project ID or title")),
	), app.produceFilmHandler)

	s.AddTool(mcp.NewTool("search_memories",
		mcp.WithDescription("Semantic search across memory transcripts and asset descriptions."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural language search query")),
		mcp.WithString("project", mcp.Description("Limit to one project (ID or title)")),
	), app.searchMemoriesHandler)

	s.AddTool(mcp.NewTool("seed_demo",
		mcp.WithDescription("Seeds a ready-made demo project with contributors, testimonies and assets."),
	), app.seedDemoHandler)

	s.AddTool(mcp.NewTool("repair_media",
		mcp.WithDescription("Wipes the media blob store. Recovery action for a corrupted database; project metadata is kept."),
	), app.repairMediaHandler)

	logger.Println("MemoryLoom server starting on Stdio...")
	if err := server.ServeStdio(s); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}
