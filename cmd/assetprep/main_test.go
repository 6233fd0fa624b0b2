package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/assetprep/internal/logger"
	"github.com/Faultbox/assetprep/internal/scene"
)

func writeScene(t *testing.T, dir string) string {
	t.Helper()
	m, err := scene.NewMemory(scene.File{
		Materials: []scene.Material{
			{ID: "m1", Name: "Metal*Plate.01", Surface: &scene.Node{
				Type:   scene.NodePrincipled,
				Params: map[string]float64{scene.ParamMetallic: 1},
			}},
			{ID: "m2", Name: "Window", Surface: &scene.Node{Type: scene.NodeGlass}},
		},
		Objects: []scene.Object{
			{ID: "o1", Name: "Crate", Polygons: 100, Vertices: 120, UVChannels: 1,
				Materials: []scene.MaterialID{"m1"}},
			{ID: "o2", Name: "Pane", Polygons: 10, Vertices: 12,
				Materials: []scene.MaterialID{"m2"}},
		},
	})
	require.NoError(t, err)
	path := filepath.Join(dir, "level.yaml")
	require.NoError(t, m.SaveTo(path))
	return path
}

// isolate keeps the user's config files out of the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Chdir(dir)
	return dir
}

func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()
	code, stdout, _ := runCmdErr(t, args...)
	return code, stdout
}

func runCmdErr(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestAnalyzeBlocking(t *testing.T) {
	path := writeScene(t, isolate(t))

	code, out := runCmd(t, "analyze", path)
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "3 blocking")
	assert.Contains(t, out, "MetalPlate01_MetalPBR")
	assert.Contains(t, out, "unwrap_uv")
	assert.Contains(t, out, "convert_shader")
}

func TestAnalyzeYAMLReport(t *testing.T) {
	path := writeScene(t, isolate(t))

	code, out := runCmd(t, "analyze", "-report", "yaml", "-select", "o1", path)
	assert.Equal(t, 2, code)

	var rep struct {
		Stage    string `yaml:"stage"`
		Blocking int    `yaml:"blocking"`
		Meshes   []struct {
			ID string `yaml:"id"`
		} `yaml:"meshes"`
		Issues []struct {
			Kind     string `yaml:"kind"`
			Severity string `yaml:"severity"`
		} `yaml:"issues"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "Analysis", rep.Stage)
	assert.Equal(t, 1, rep.Blocking)
	require.Len(t, rep.Meshes, 1)
	assert.Equal(t, "o1", rep.Meshes[0].ID)
	require.NotEmpty(t, rep.Issues)
	assert.Equal(t, "Blocking", rep.Issues[0].Severity)
}

func TestFixWritesScene(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, dir)
	fixed := filepath.Join(dir, "fixed.yaml")

	code, out := runCmd(t, "fix", "-w", fixed, path)
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "0 blocking")

	m, err := scene.Load(fixed)
	require.NoError(t, err)
	mat, err := m.Material("m1")
	require.NoError(t, err)
	assert.Equal(t, "MetalPlate01_MetalPBR", mat.Name)
	obj, err := m.Object("o2")
	require.NoError(t, err)
	assert.Equal(t, 1, obj.UVChannels)

	// input untouched
	orig, err := scene.Load(path)
	require.NoError(t, err)
	mat, err = orig.Material("m1")
	require.NoError(t, err)
	assert.Equal(t, "Metal*Plate.01", mat.Name)
}

func TestExportRefusedWhileBlocking(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, dir)

	code, out := runCmd(t, "export", "-out", filepath.Join(dir, "out"), path)
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "Window")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestExportWithFix(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, dir)
	out := filepath.Join(dir, "out")

	code, stdout := runCmd(t, "export", "-fix", "-out", out, path)
	require.Equal(t, 0, code, stdout)
	assert.FileExists(t, filepath.Join(out, "Crate.fbx.yaml"))
	assert.FileExists(t, filepath.Join(out, "Pane.fbx.yaml"))
	assert.Contains(t, stdout, "ok")
}

func TestExportFailuresReported(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, dir)
	logFile := filepath.Join(dir, "assetprep.log")

	// a regular file where the output directory should be
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(out, []byte("x"), 0644))

	code, stdout, stderr := runCmdErr(t, "export", "-fix", "-out", out, "-log", logFile, path)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "2 of 2 object(s) failed")
	assert.Contains(t, stdout, "failed")

	logger.Sync()
	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"command failed"`)
	assert.Contains(t, string(data), `"command":"export"`)
}

func TestConfigCommand(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "cfg", "assetprep.yaml")

	code, out := runCmd(t, "config", "-budget", "1234", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "polygon_budget: 1234")
}

func TestUsage(t *testing.T) {
	code, out := runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Commands:")

	code, _ = runCmd(t, "frobnicate")
	assert.Equal(t, 1, code)

	code, _ = runCmd(t)
	assert.Equal(t, 1, code)

	isolate(t)
	code, _ = runCmd(t, "analyze")
	assert.Equal(t, 1, code)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchReanalyzes(t *testing.T) {
	dir := isolate(t)
	path := writeScene(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	var stdout syncBuffer
	done := make(chan error, 1)
	go func() { done <- cmdWatch(ctx, []string{path}, &stdout) }()

	require.Eventually(t, func() bool {
		return strings.Count(stdout.String(), "== level.yaml") == 1
	}, 5*time.Second, 20*time.Millisecond)

	// fix the scene on disk; the watcher reports the new state
	m, err := scene.Load(path)
	require.NoError(t, err)
	require.NoError(t, m.UnwrapUV("o2"))
	require.NoError(t, m.SaveTo(path))

	require.Eventually(t, func() bool {
		return strings.Count(stdout.String(), "== level.yaml") >= 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, stdout.String(), "2 blocking")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
