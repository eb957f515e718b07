package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"hydrangea_count",
		"hydrangea_defaults",
		"image_load",
		"image_dimensions",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	toolsRequiringPath := map[string]bool{
		"hydrangea_count":    true,
		"hydrangea_defaults": false,
		"image_load":         true,
		"image_dimensions":   true,
	}

	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			required, _ := tool.InputSchema["required"].([]string)
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
				}
			}
			if hasPath != toolsRequiringPath[tool.Name] {
				t.Errorf("requires path: got %v, want %v", hasPath, toolsRequiringPath[tool.Name])
			}
		})
	}
}

func TestToolDefinitions_CountArguments(t *testing.T) {
	var count Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "hydrangea_count" {
			count = tool
		}
	}

	props, _ := count.InputSchema["properties"].(map[string]interface{})
	for _, name := range []string{"path", "output_dir", "seed"} {
		if _, ok := props[name]; !ok {
			t.Errorf("hydrangea_count is missing property %s", name)
		}
	}

	seed, _ := props["seed"].(map[string]interface{})
	if seed["type"] != "integer" || seed["default"] != 42 {
		t.Errorf("seed schema: got %v", seed)
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	// Should match GetToolDefinitions
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
