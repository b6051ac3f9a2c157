package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quentinrf/darkwatt/internal/colorscheme"
	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/internal/messaging"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyStdinJSON(t *testing.T) {
	page := `<html><head><meta name="color-scheme" content="dark"></head><body></body></html>`

	out, err := execute(t, page, "classify", "--json", "-")
	require.NoError(t, err)

	var resp messaging.ThemeResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, domain.ThemeDark, resp.Mode)
	assert.Equal(t, colorscheme.SignalMeta, resp.Signal)
}

func TestClassifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body style="background-color: #fff"></body></html>`), 0o600))

	out, err := execute(t, "", "classify", path)
	require.NoError(t, err)
	assert.Contains(t, out, "light")
}

func TestClassifyMissingFile(t *testing.T) {
	_, err := execute(t, "", "classify", filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "v"+version+"\n", out)
}

func TestRenderStatsPlaceholders(t *testing.T) {
	out := renderStats("localhost:50051", &messaging.DataResponse{})

	assert.Contains(t, out, "Luminance")
	assert.Contains(t, out, placeholder)
	assert.Contains(t, out, "0.00 Wh")
	assert.NotContains(t, out, "nits")
}

func TestRenderStatsValues(t *testing.T) {
	v, cpu := 120.0, 12.5
	out := renderStats("localhost:50051", &messaging.DataResponse{
		CurrentLuminance:  &v,
		CPUUsage:          &cpu,
		Source:            "https://example.com",
		TotalTrackedSites: 4,
		Savings:           domain.SavingsSummary{Today: 1.5},
		Display:           domain.DisplayInfo{WidthPx: 1920, HeightPx: 1080, Tech: domain.DisplayOLED},
	})

	assert.Contains(t, out, "120.0 nits (Moderate)")
	assert.Contains(t, out, "12.5%")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "1.50 Wh")
	assert.Contains(t, out, "1920x1080 oled")
}
