package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Project & contributor handlers ---

func (a *App) createProjectHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	recipient, _ := args["recipient"].(string)
	if recipient == "" {
		return mcp.NewToolResultError("recipient is required"), nil
	}
	milestone, _ := args["milestone"].(string)
	if milestone == "" {
		milestone = string(MilestoneBirthday)
	}
	title, _ := args["title"].(string)
	deadline, _ := args["deadline"].(string)
	theme, _ := args["theme"].(string)

	project := a.store.CreateProject(title, recipient, MilestoneType(milestone), deadline, theme)
	return mcp.NewToolResultText(fmt.Sprintf("Project %q created (%s). Status: %s.", project.Title, project.ID, project.Status)), nil
}

func (a *App) listProjectsHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projects := a.store.ListProjects()
	if len(projects) == 0 {
		return mcp.NewToolResultText(NoProjectsMsg), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d project(s):\n", len(projects))
	for _, p := range projects {
		submitted := 0
		for _, c := range p.Contributors {
			if c.Status == ContributorSubmitted {
				submitted++
			}
		}
		fmt.Fprintf(&sb, "- %s (%s, %s) status=%s contributors=%d/%d assets=%d segments=%d\n",
			p.Title, p.RecipientName, p.Milestone, p.Status,
			submitted, len(p.Contributors), len(p.CommunityAssets), len(p.Storyboard))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (a *App) inviteContributorHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	projectArg, _ := args["project"].(string)
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	relationship, _ := args["relationship"].(string)
	email, _ := args["email"].(string)

	project, err := a.store.GetProject(projectArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contributor, err := a.store.AddContributor(project.ID, name, relationship, email)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	invite := a.copywriter.InviteMessage(ctx, project.RecipientName, project.Milestone)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Invited %s (%s) to %q.\n\n", contributor.Name, contributor.ID, project.Title)
	fmt.Fprintf(&sb, "WhatsApp: %s\n\nEmail: %s\n\nSlack: %s\n", invite.WhatsApp, invite.Email, invite.Slack)
	return mcp.NewToolResultText(sb.String()), nil
}

func (a *App) nudgeContributorHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	projectArg, _ := args["project"].(string)
	contributorArg, _ := args["contributor"].(string)

	project, err := a.store.GetProject(projectArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contributor, err := findContributor(project, contributorArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if contributor.Status == ContributorSubmitted {
		return mcp.NewToolResultText(fmt.Sprintf("%s has already submitted; no nudge needed.", contributor.Name)), nil
	}

	if err := a.store.NudgeContributor(project.ID, contributor.ID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nudge := a.copywriter.NudgeMessage(ctx, project.RecipientName, project.Milestone, project.Deadline, project.Tone)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Nudge recorded for %s.\n\nFunny: %s\n\nHeartfelt: %s\n", contributor.Name, nudge.Funny, nudge.Heartfelt)
	return mcp.NewToolResultText(sb.String()), nil
}

// --- Capture & library handlers ---

// recordMemoryHandler drives a full capture session against the
// configured device: prompt choice, recording, review and submission in
// one pass.
func (a *App) recordMemoryHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	projectArg, _ := args["project"].(string)
	contributorArg, _ := args["contributor"].(string)
	promptIndex := 0
	if idx, ok := args["prompt_index"].(float64); ok {
		promptIndex = int(idx)
	}

	project, err := a.store.GetProject(projectArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	contributor, err := findContributor(project, contributorArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session := NewCaptureSession(project.ID, contributor.ID, a.device, a.copywriter, a.media, a.store, a.logger)
	if err := session.Begin(ctx, project.Milestone, project.RecipientName); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := session.ChoosePrompt(promptIndex); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := session.StartRecording(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", session.Failure(), err)), nil
	}
	if err := session.StopRecording(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s (%v)", session.Failure(), err)), nil
	}
	memory, err := session.Submit(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Submission failed: %v", err)), nil
	}

	if err := a.recall.IndexMemory(ctx, project.ID, *memory); err != nil {
		a.logger.Printf("Warning: Failed to index recorded memory: %v", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory recorded for %s under prompt %q. Media key: %s.",
		contributor.Name, session.ChosenPrompt(), memory.MediaKey)), nil
}

func (a *App) uploadAssetHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	projectArg, _ := args["project"].(string)
	contributorName, _ := args["contributor"].(string)
	title, _ := args["title"].(string)
	if title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}
	description, _ := args["description"].(string)
	mediaType, _ := args["media_type"].(string)
	if mediaType == "" {
		mediaType = string(MediaPhoto)
	}
	content, _ := args["content"].(string)
	if content == "" {
		content = title
	}

	project, err := a.store.GetProject(projectArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	assetID := uuid.NewString()
	key := fmt.Sprintf("assets/%s/%s", project.ID, assetID)
	if err := a.media.SaveBlob(key, contentTypeFor(MediaType(mediaType)), []byte(content)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Storing asset media failed: %v", err)), nil
	}

	asset := CommunityAsset{
		ID:              assetID,
		ContributorName: contributorName,
		Type:            MediaType(mediaType),
		MediaKey:        key,
		Title:           title,
		Description:     description,
	}
	stored, err := a.store.AddCommunityAsset(project.ID, asset)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := a.recall.IndexAsset(ctx, project.ID, *stored); err != nil {
		a.logger.Printf("Warning: Failed to index asset: %v", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Asset %q (%s) added to %q.", stored.Title, stored.ID, project.Title)), nil
}

func (a *App) commentAssetHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	projectArg, _ := args["project"].(string)
	assetID, _ := args["asset"].(string)
	author, _ := args["author"].(string)
	text, _ := args["text"].(string)
	if text == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	project, err := a.store.GetProject(projectArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := a.store.AddAssetComment(project.ID, assetID, author, text); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Memory spark added."), nil
}

// --- Recall & maintenance handlers ---

func (a *App) searchMemoriesHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]any)
	if !ok {
		return mcp.NewToolResultError("Invalid args"), nil
	}
	query, _ := args["query"].(string)
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	projectID := ""
	if projectArg, _ := args["project"].(string); projectArg != "" {
		project, err := a.store.GetProject(projectArg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		projectID = project.ID
	}

	if a.recall.Count() == 0 {
		return mcp.NewToolResultText(RecallEmptyMsg), nil
	}
	hits, err := a.recall.Search(ctx, query, projectID, DefaultRecallResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No matching memories."), nil
	}

	var sb strings.Builder
	sb.WriteString("Relevant memories:\n\n")
	for _, hit := range hits {
		fmt.Fprintf(&sb, "[%s] %s by %s (Sim: %.2f)\n%s\n---\n", hit.ID, hit.Kind, hit.Contributor, hit.Similarity, hit.Text)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (a *App) seedDemoHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	seeder := NewSeeder(a.store, a.media, a.recall, a.logger)
	project, err := seeder.Seed(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Seeding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Demo project ready: %q (%s).", project.Title, project.ID)), nil
}

// repairMediaHandler wipes the blob store. It is the explicit recovery
// action for a corrupted media database; project metadata is untouched.
func (a *App) repairMediaHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	a.releaseAllBoardHandles()
	if err := a.media.Clear(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Repair failed: %v", err)), nil
	}
	return mcp.NewToolResultText(MediaRepairedMsg), nil
}

// contentTypeFor picks a storage MIME type for an uploaded asset.
func contentTypeFor(mediaType MediaType) string {
	switch mediaType {
	case MediaVideo:
		return "video/webm"
	case MediaAudio:
		return "audio/webm"
	default:
		return "image/jpeg"
	}
}
