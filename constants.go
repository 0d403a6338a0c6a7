package main

import "time"

// Model configuration constants
const (
	// Embedding model for semantic recall over submissions
	DefaultEmbeddingModel = "gemini-embedding-001"
	// Generation model for storyboard analysis and copywriting
	DefaultNarrativeModel = "gemini-3-flash-preview"
	// Output dimensionality for embeddings (MRL optimized)
	EmbeddingDimension = 768
)

// Embedding task type constants
const (
	// Task type for storing documents
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	// Task type for querying
	TaskTypeQuery = "RETRIEVAL_QUERY"
	// Prefix to mark query tasks in the embedding function
	QueryTaskPrefix = "QUERY_TASK:"
)

// Recall constants
const (
	// Default number of results returned by semantic recall
	DefaultRecallResults = 5
)

// Storage constants
const (
	// Subdirectory for the media blob database
	MediaDBDir = "media"
	// Collection name in the vector database
	RecallCollectionName = "loom_recall"
	// Persisted project state file
	ProjectDataFile = "projects.json"
)

// Inference call policy
const (
	// Overall ceiling for one sequencing round trip
	SequenceTimeout = 15 * time.Second
	// Rate-limited requests are retried this many times before being
	// classified as a quota failure
	MaxRateLimitRetries = 2
	// Base delay for exponential backoff between retries
	RetryBaseDelay = 500 * time.Millisecond
)

// Capture pipeline constants
const (
	// Interval between environment quality samples while recording
	QualitySampleInterval = 2 * time.Second
)

// Fallback storyboard labels. The deterministic heuristic assigns these
// when the inference collaborator is unavailable or returns garbage.
const (
	FallbackOpeningTheme = "Opening Moments"
	FallbackClosingTheme = "Closing Wishes"
	FallbackBeatEven     = "The Tearjerker"
	FallbackBeatOdd      = "The Inside Joke"
	FallbackTone         = "Warm & Celebratory"
	FallbackMusicGenre   = "Acoustic Folk"
	FallbackClosingLine  = "Woven together with love, one memory at a time."
	FallbackTransition   = "Gentle crossfade"
)

// Storyboard segment bounds requested from the collaborator
const (
	MinThemeCount = 3
	MaxThemeCount = 7
)

// Server configuration constants
const (
	// MCP server name
	ServerName = "memoryloom"
	// Server version following semantic versioning
	ServerVersion = "1.0.0"
)

// UI/CLI messages
const (
	PromptStr     = "loom> "
	WelcomeMsg    = "=== MemoryLoom Test Mode ==="
	HelpMsg       = "Commands: projects | create <recipient> <milestone> | invite <project> <name> | record <project> <contributor> | upload <project> <name> <title> | nudge <project> <contributor> | sequence <project> | reorder <project> <instruction> | history <project> | produce <project> | search <q> | seed | repair | exit"
	UnknownCmdMsg = "Unknown command. Try: projects, create, invite, record, upload, nudge, sequence, reorder, history, produce, search, seed, repair, exit"
)

// Status messages
const (
	NoProjectsMsg    = "No projects yet. Create one or run 'seed' for demo data."
	MediaRepairedMsg = "Media store wiped. Re-run 'seed' to restore demo assets."
	RecallEmptyMsg   = "Nothing indexed yet to search."
)

// Simulated final render captions. No transcoding happens; producing the
// final film is a staged progress animation.
var renderSteps = []string{
	"Analyzing semantic flow...",
	"Matching the rhythm...",
	"Color grading the story...",
	"Weaving the final Loom...",
}

// Static contributor prompts used when the copywriter is unavailable.
var fallbackPrompts = []string{
	"What is a small, quiet way they've made your life better?",
	"If you had to pick one 'trademark' habit of theirs, what would it be?",
	"Tell a story about a time they showed up for you when it mattered.",
	"What is one piece of advice they gave you that you actually followed?",
}
