package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ironsheep/hydrangea-counter/internal/config"
	"github.com/ironsheep/hydrangea-counter/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.Default(), zerolog.Nop(), "test")
}

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

// createBushImageFile writes a green image with three white blossoms of
// radius 40 and returns its path.
func createBushImageFile(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 400, 400))
	centers := []image.Point{{100, 100}, {300, 100}, {200, 300}}
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			c := color.RGBA{40, 160, 60, 255}
			for _, ctr := range centers {
				dx, dy := x-ctr.X, y-ctr.Y
				if dx*dx+dy*dy <= 40*40 {
					c = color.RGBA{255, 255, 255, 255}
				}
			}
			img.Set(x, y, c)
		}
	}
	return writeTestPNG(t, img)
}

func writeTestPNG(t *testing.T, img image.Image) string {
	t.Helper()

	f, err := os.CreateTemp(t.TempDir(), "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return f.Name()
}

func toolCall(t *testing.T, name string, args interface{}) *MCPRequest {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	return &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
}

// decodeToolText unmarshals the JSON text of a successful tool response.
func decodeToolText(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp == nil {
		t.Fatal("nil response")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("Result should be a map, got %T", resp.Result)
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("unexpected content: %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Fatalf("content type: got %v, want text", content[0]["type"])
	}
	if err := json.Unmarshal([]byte(content[0]["text"].(string)), v); err != nil {
		t.Fatalf("failed to decode tool text: %v", err)
	}
}

func TestHandleToolsCall_HydrangeaCount(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBushImageFile(t)

	resp := s.handleRequest(toolCall(t, "hydrangea_count", map[string]interface{}{"path": imgPath}))

	var res pipeline.Result
	decodeToolText(t, resp, &res)

	if res.Count != 3 {
		t.Errorf("count: got %d, want 3", res.Count)
	}
	if res.Band.MinRadius != 16 || res.Band.MaxRadius != 92 {
		t.Errorf("band: got %+v", res.Band)
	}
	if len(res.Artifacts) != 5 || res.Artifacts[0] != "memory://"+pipeline.ArtifactOriginal {
		t.Errorf("artifacts without output_dir should stay in memory: %v", res.Artifacts)
	}
}

func TestHandleToolsCall_HydrangeaCount_OutputDir(t *testing.T) {
	s := newTestServer(t)
	imgPath := createBushImageFile(t)
	outDir := filepath.Join(t.TempDir(), "results")

	resp := s.handleToolsCall(toolCall(t, "hydrangea_count", map[string]interface{}{
		"path":       imgPath,
		"output_dir": outDir,
		"seed":       7,
	}))

	var res pipeline.Result
	decodeToolText(t, resp, &res)

	if res.Count != 3 {
		t.Errorf("count: got %d, want 3", res.Count)
	}
	for _, name := range []string{
		pipeline.ArtifactOriginal,
		pipeline.ArtifactFiltered,
		pipeline.ArtifactSegmentation,
		pipeline.ArtifactBinary,
		pipeline.ArtifactCount,
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("artifact %s not written: %v", name, err)
		}
	}
}

func TestHandleToolsCall_HydrangeaCount_Errors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"no path", map[string]interface{}{}},
		{"missing file", map[string]interface{}{"path": "/nonexistent/bush.jpg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "results")
			tt.args["output_dir"] = outDir

			resp := newTestServer(t).handleToolsCall(toolCall(t, "hydrangea_count", tt.args))
			if resp.Error == nil {
				t.Fatal("expected a tool error")
			}
			if resp.Error.Code != -32000 {
				t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
			}
			if _, err := os.Stat(outDir); !os.IsNotExist(err) {
				t.Error("output directory should not be created on input errors")
			}
		})
	}
}

func TestHandleToolsCall_HydrangeaDefaults(t *testing.T) {
	cfg := config.Default()
	cfg.Cluster.Seed = 99
	s := New(cfg, zerolog.Nop(), "test")

	var got struct {
		Config  config.Config `json:"config"`
		Default config.Config `json:"default"`
	}
	decodeToolText(t, s.handleToolsCall(toolCall(t, "hydrangea_defaults", map[string]interface{}{})), &got)

	if got.Config.Cluster.Seed != 99 {
		t.Errorf("active seed: got %d, want 99", got.Config.Cluster.Seed)
	}
	if got.Default != config.Default() {
		t.Errorf("defaults: got %+v", got.Default)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeToolText(t, s.handleRequest(toolCall(t, "image_load", map[string]interface{}{"path": imgPath})), &info)

	if info.Width != 100 || info.Height != 80 || info.Format != "png" {
		t.Errorf("got %+v", info)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeToolText(t, s.handleToolsCall(toolCall(t, "image_dimensions", map[string]interface{}{"path": imgPath})), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("got %+v", dims)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := newTestServer(t)

	resp := s.handleToolsCall(toolCall(t, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}))
	if resp.Error == nil {
		t.Fatal("expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error.Code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{invalid`),
	}

	resp := s.handleToolsCall(req)
	if resp.Error == nil {
		t.Fatal("expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error.Code: got %d, want -32602", resp.Error.Code)
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{128, 128, 128, 255})

	// Test each tool to ensure executeTool correctly dispatches
	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"hydrangea_count", map[string]interface{}{"path": imgPath}},
		{"hydrangea_defaults", map[string]interface{}{}},
		{"image_load", map[string]interface{}{"path": imgPath}},
		{"image_dimensions", map[string]interface{}{"path": imgPath}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(tt.name, argsJSON)
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := newTestServer(t)

	_, err := s.executeTool("image_crop", json.RawMessage(`{}`))
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"image_load", "hydrangea_count"} {
		if _, err := s.executeTool(name, json.RawMessage(`{invalid`)); err == nil {
			t.Errorf("executeTool(%s) should fail for invalid JSON", name)
		}
	}
}

func TestToolResponse_EncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	s := New(config.Default(), zerolog.New(&logs), "test")

	resp := s.toolResponse(7, "hydrangea_count", map[string]float64{"count": math.NaN()})
	if resp.Error == nil {
		t.Fatalf("expected an error response, got result %v", resp.Result)
	}
	if resp.Error.Code != -32603 {
		t.Errorf("Error.Code: got %d, want -32603", resp.Error.Code)
	}
	if resp.ID != 7 {
		t.Errorf("ID: got %v, want 7", resp.ID)
	}
	if !strings.Contains(logs.String(), "failed to encode tool result") {
		t.Errorf("encode failure not logged: %q", logs.String())
	}
}
