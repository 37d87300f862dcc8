package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"mnemo/internal/core"
	"mnemo/internal/models"
)

// memoryService is the slice of core.Service the tool handlers need.
// Tests inject a stub.
type memoryService interface {
	Store(raw models.RawMemoryInput, project string) (map[string]interface{}, error)
	Search(query string, limit int, project *string, sector *string, useVectors bool) ([]models.SearchResult, error)
	GetContext(limit int, project *string, sector *string, query *string, semanticMode string, topupRecent bool) ([]models.SearchResult, int64, error)
	Close() error
}

var _ memoryService = (*core.Service)(nil)

// RunServer starts the MCP server with stdio transport.
func RunServer() error {
	svc, err := core.NewService("")
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer svc.Close()

	mcpServer := mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    "mnemo",
		Version: "0.1.0",
	}, nil)

	if err := registerTools(mcpServer, svc); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	return mcpServer.Run(context.Background(), &mcpsdk.StdioTransport{})
}

// registerTools registers all mnemo tools with the MCP server.
func registerTools(s *mcpsdk.Server, svc *core.Service) error {
	storeHandler := func(ctx context.Context, req *mcpsdk.CallToolRequest, input map[string]interface{}) (*mcpsdk.CallToolResult, map[string]interface{}, error) {
		result, err := HandleMnemoStore(svc, input)
		if err != nil {
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{
					&mcpsdk.TextContent{Text: fmt.Sprintf("Error: %v", err)},
				},
				IsError: true,
			}, nil, nil
		}
		return nil, result, nil
	}
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "mnemo_store",
		Description: "Save a memory for future sessions. You MUST call this before ending any session where you made changes, fixed bugs, made decisions, or learned something.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title":         map[string]interface{}{"type": "string", "description": "Short descriptive title"},
				"content":       map[string]interface{}{"type": "string", "description": "What happened, was decided, or was learned"},
				"sector":        map[string]interface{}{"type": "string", "enum": []string{"episodic", "semantic", "procedural", "emotional", "reflective"}, "description": "Memory sector (defaults to semantic)"},
				"tags":          map[string]interface{}{"type": []interface{}{"string", "array"}, "items": map[string]interface{}{"type": "string"}, "description": "Comma-separated string or array of tags"},
				"related_files": map[string]interface{}{"type": []interface{}{"string", "array"}, "items": map[string]interface{}{"type": "string"}, "description": "Comma-separated string or array of file paths"},
				"details":       map[string]interface{}{"type": "string", "description": "Full context with all important details"},
				"source":        map[string]interface{}{"type": "string", "description": "Source agent name"},
				"project":       map[string]interface{}{"type": "string", "description": "Project name (defaults to current directory)"},
			},
			"required": []string{"title", "content"},
		},
	}, storeHandler)

	searchHandler := func(ctx context.Context, req *mcpsdk.CallToolRequest, input map[string]interface{}) (*mcpsdk.CallToolResult, map[string]interface{}, error) {
		results, err := HandleMnemoSearch(svc, input)
		if err != nil {
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{
					&mcpsdk.TextContent{Text: fmt.Sprintf("Error: %v", err)},
				},
				IsError: true,
			}, nil, nil
		}
		return nil, map[string]interface{}{"results": results}, nil
	}
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "mnemo_search",
		Description: "Search memories using keyword and semantic search. Returns matching memories ranked by relevance.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":   map[string]interface{}{"type": "string", "description": "Search query"},
				"limit":   map[string]interface{}{"type": "integer", "description": "Maximum number of results", "default": 5},
				"project": map[string]interface{}{"type": "string", "description": "Filter by project"},
				"sector":  map[string]interface{}{"type": "string", "description": "Filter by memory sector"},
			},
			"required": []string{"query"},
		},
	}, searchHandler)

	contextHandler := func(ctx context.Context, req *mcpsdk.CallToolRequest, input map[string]interface{}) (*mcpsdk.CallToolResult, map[string]interface{}, error) {
		result, err := HandleMnemoContext(svc, input)
		if err != nil {
			return &mcpsdk.CallToolResult{
				Content: []mcpsdk.Content{
					&mcpsdk.TextContent{Text: fmt.Sprintf("Error: %v", err)},
				},
				IsError: true,
			}, nil, nil
		}
		return nil, result, nil
	}
	mcpsdk.AddTool(s, &mcpsdk.Tool{
		Name:        "mnemo_context",
		Description: "Get memory context for the current project. Returns prior decisions, procedures, and context.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"limit":   map[string]interface{}{"type": "integer", "description": "Maximum number of memories", "default": 10},
				"project": map[string]interface{}{"type": "string", "description": "Project name (defaults to current directory)"},
				"sector":  map[string]interface{}{"type": "string", "description": "Filter by memory sector"},
			},
		},
	}, contextHandler)

	return nil
}

// HandleMnemoStore handles the mnemo_store tool call.
func HandleMnemoStore(svc memoryService, params map[string]interface{}) (map[string]interface{}, error) {
	title, _ := params["title"].(string)
	content, _ := params["content"].(string)
	sector, _ := getStringFromMap(params, "sector")
	tags, _ := getStringSliceFromMap(params, "tags")
	relatedFiles, _ := getStringSliceFromMap(params, "related_files")
	details, _ := getStringFromMap(params, "details")
	source, _ := getStringFromMap(params, "source")
	project, _ := getStringFromMap(params, "project")

	if project == "" {
		project = filepath.Base(getCurrentDir())
	}

	raw := models.RawMemoryInput{
		Title:   title,
		Content: content,
		Sector:  sector,
	}

	if source != "" {
		raw.Source = &source
	}
	if details != "" {
		raw.Details = &details
	}
	raw.Tags = tags
	raw.RelatedFiles = relatedFiles

	return svc.Store(raw, project)
}

// HandleMnemoSearch handles the mnemo_search tool call.
func HandleMnemoSearch(svc memoryService, params map[string]interface{}) ([]map[string]interface{}, error) {
	query, _ := params["query"].(string)
	limit := 5
	if l, ok := params["limit"].(float64); ok {
		limit = int(l)
	}

	var project *string
	if p, ok := params["project"].(string); ok && p != "" {
		project = &p
	}

	var sector *string
	if s, ok := params["sector"].(string); ok && s != "" {
		normalized := models.NormalizeSector(s)
		sector = &normalized
	}

	results, err := svc.Search(query, limit, project, sector, true)
	if err != nil {
		return nil, err
	}

	clean := make([]map[string]interface{}, len(results))
	for i, r := range results {
		clean[i] = map[string]interface{}{
			"id":          r.ID,
			"title":       r.Title,
			"content":     r.Content,
			"sector":      r.Sector,
			"tags":        r.Tags,
			"project":     r.Project,
			"source":      r.Source,
			"created_at":  r.CreatedAt[:10],
			"score":       r.Score,
			"has_details": r.HasDetails,
		}
	}

	return clean, nil
}

// HandleMnemoContext handles the mnemo_context tool call.
func HandleMnemoContext(svc memoryService, params map[string]interface{}) (map[string]interface{}, error) {
	limit := 10
	if l, ok := params["limit"].(float64); ok {
		limit = int(l)
	}

	var project *string
	if p, ok := params["project"].(string); ok && p != "" {
		project = &p
	} else {
		proj := filepath.Base(getCurrentDir())
		project = &proj
	}

	var sector *string
	if s, ok := params["sector"].(string); ok && s != "" {
		normalized := models.NormalizeSector(s)
		sector = &normalized
	}

	results, total, err := svc.GetContext(limit, project, sector, nil, "never", false)
	if err != nil {
		return nil, err
	}

	memories := make([]map[string]interface{}, len(results))
	for i, r := range results {
		memories[i] = map[string]interface{}{
			"id":     r.ID,
			"title":  r.Title,
			"sector": r.Sector,
			"tags":   r.Tags,
			"date":   r.CreatedAt[:10],
		}
	}

	return map[string]interface{}{
		"total":    total,
		"showing":  len(memories),
		"memories": memories,
	}, nil
}

// Helper functions

func getStringFromMap(m map[string]interface{}, key string) (string, bool) {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str, true
		}
	}
	return "", false
}

func getStringSliceFromMap(m map[string]interface{}, key string) ([]string, bool) {
	if val, ok := m[key]; ok {
		if arr, ok := val.([]interface{}); ok {
			result := make([]string, len(arr))
			for i, v := range arr {
				if str, ok := v.(string); ok {
					result[i] = str
				}
			}
			return result, true
		}
		if str, ok := val.(string); ok {
			// Try to parse as a JSON array first.
			var arr []string
			if err := json.Unmarshal([]byte(str), &arr); err == nil {
				return arr, true
			}
			// Fallback: comma-separated string.
			parts := strings.Split(str, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				if t := strings.TrimSpace(p); t != "" {
					result = append(result, t)
				}
			}
			if len(result) > 0 {
				return result, true
			}
		}
	}
	return nil, false
}

func getCurrentDir() string {
	dir, _ := os.Getwd()
	return dir
}
