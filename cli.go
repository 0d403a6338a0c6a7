package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// runInteractiveCLI drives the tool handlers from a terminal for manual
// testing without an MCP client attached.
func (a *App) runInteractiveCLI(ctx context.Context) {
	fmt.Println(WelcomeMsg)
	fmt.Println(HelpMsg)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n" + PromptStr)
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "exit":
			return
		case "help":
			fmt.Println(HelpMsg)
		case "projects":
			a.runTool(ctx, a.listProjectsHandler, nil)
		case "create":
			if len(parts) < 3 {
				fmt.Println("Usage: create <recipient> <milestone>")
				continue
			}
			a.runTool(ctx, a.createProjectHandler, map[string]any{
				"recipient": parts[1],
				"milestone": strings.Join(parts[2:], " "),
			})
		case "invite":
			if len(parts) < 3 {
				fmt.Println("Usage: invite <project> <name>")
				continue
			}
			a.runTool(ctx, a.inviteContributorHandler, map[string]any{
				"project": parts[1],
				"name":    strings.Join(parts[2:], " "),
			})
		case "record":
			if len(parts) < 3 {
				fmt.Println("Usage: record <project> <contributor>")
				continue
			}
			a.runTool(ctx, a.recordMemoryHandler, map[string]any{
				"project":     parts[1],
				"contributor": strings.Join(parts[2:], " "),
			})
		case "upload":
			if len(parts) < 4 {
				fmt.Println("Usage: upload <project> <name> <title>")
				continue
			}
			a.runTool(ctx, a.uploadAssetHandler, map[string]any{
				"project":     parts[1],
				"contributor": parts[2],
				"title":       strings.Join(parts[3:], " "),
			})
		case "nudge":
			if len(parts) < 3 {
				fmt.Println("Usage: nudge <project> <contributor>")
				continue
			}
			a.runTool(ctx, a.nudgeContributorHandler, map[string]any{
				"project":     parts[1],
				"contributor": strings.Join(parts[2:], " "),
			})
		case "sequence":
			if len(parts) < 2 {
				fmt.Println("Usage: sequence <project>")
				continue
			}
			a.runTool(ctx, a.sequenceStoryboardHandler, map[string]any{
				"project": parts[1],
			})
		case "reorder":
			if len(parts) < 3 {
				fmt.Println("Usage: reorder <project> <instruction>")
				continue
			}
			a.runTool(ctx, a.reorderStoryboardHandler, map[string]any{
				"project":     parts[1],
				"instruction": strings.Join(parts[2:], " "),
			})
		case "history":
			if len(parts) < 2 {
				fmt.Println("Usage: history <project>")
				continue
			}
			a.runTool(ctx, a.storyboardHistoryHandler, map[string]any{
				"project": parts[1],
			})
		case "produce":
			if len(parts) < 2 {
				fmt.Println("Usage: produce <project>")
				continue
			}
			a.runTool(ctx, a.produceFilmHandler, map[string]any{
				"project": parts[1],
			})
		case "search":
			if len(parts) < 2 {
				fmt.Println("Usage: search <query>")
				continue
			}
			a.runTool(ctx, a.searchMemoriesHandler, map[string]any{
				"query": strings.Join(parts[1:], " "),
			})
		case "seed":
			a.runTool(ctx, a.seedDemoHandler, nil)
		case "repair":
			a.runTool(ctx, a.repairMediaHandler, nil)
		default:
			fmt.Println(UnknownCmdMsg)
		}
	}
}

// runTool invokes a handler the way the MCP server would and prints its
// text result.
func (a *App) runTool(ctx context.Context, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) {
	req := mcp.CallToolRequest{}
	if args != nil {
		req.Params.Arguments = args
	} else {
		req.Params.Arguments = map[string]any{}
	}

	res, err := handler(ctx, req)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for _, content := range res.Content {
		if text, ok := content.(mcp.TextContent); ok {
			fmt.Println(text.Text)
		}
	}
}
