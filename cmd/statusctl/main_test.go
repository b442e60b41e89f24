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
)

const widgetDoc = `# Widget Tracker

## Overview
Tracks widgets across warehouses.

## Status
**Status:** Active
**Progress:** 40%

## Completed Features
- Barcode scanning
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag values survive between Execute calls on the shared root.
	parseCmd.Flags().Set("catalog", "false")
	listCmd.Flags().Set("json", "false")
	showCmd.Flags().Set("legacy", "false")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSlugCommand(t *testing.T) {
	out, err := execute(t, "", "slug", "Café", "Project")
	require.NoError(t, err)
	assert.Equal(t, "cafe-project\n", out)
}

func TestParseCommand_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte(widgetDoc), 0o644))

	out, err := execute(t, "", "parse", path)
	require.NoError(t, err)

	var got struct {
		Record struct {
			ID     string `json:"id"`
			Status struct {
				Phase    string `json:"phase"`
				Progress int    `json:"progress"`
			} `json:"status"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "widget-tracker", got.Record.ID)
	assert.Equal(t, "Active", got.Record.Status.Phase)
	assert.Equal(t, 40, got.Record.Status.Progress)
}

func TestParseCommand_Stdin(t *testing.T) {
	out, err := execute(t, widgetDoc, "parse", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"widget-tracker"`)
}

func TestParseCommand_Catalog(t *testing.T) {
	catalog := "# Projects\n\n## Alpha Tool\n### Status\nActive\n\n## Beta Tool\n### Status\nPaused\n"
	out, err := execute(t, catalog, "parse", "--catalog", "-")
	require.NoError(t, err)

	var got []struct {
		Record struct {
			ID string `json:"id"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alpha-tool", got[0].Record.ID)
	assert.Equal(t, "beta-tool", got[1].Record.ID)
}

func TestParseCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "absent.md"))
	require.Error(t, err)
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	docDir := filepath.Join(dir, "raw", "acme", "widget", "main")
	require.NoError(t, os.MkdirAll(docDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "ProjectDetails.md"), []byte(widgetDoc), 0o644))

	cfg := `db:
  path: ` + filepath.Join(dir, "statusboard.db") + `
session:
  id: cli
ingest:
  raw_base_url: file://` + filepath.Join(dir, "raw") + `
sources:
  - name: Widget
    owner: acme
    repo: widget
    path: ProjectDetails.md
`
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestCacheCommands(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := execute(t, "", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "widget-tracker")
	assert.Contains(t, out, "Active")

	out, err = execute(t, "", "show", "--config", cfgPath, "Widget")
	require.NoError(t, err)
	var rec struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "widget-tracker", rec.ID)
	assert.Equal(t, "Widget Tracker", rec.Title)

	out, err = execute(t, "", "stats", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"initialized": true`)

	out, err = execute(t, "", "activity", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "project_ingested")
}

func TestShowCommand_Unknown(t *testing.T) {
	cfgPath := writeConfig(t)
	_, err := execute(t, "", "show", "--config", cfgPath, "nothing-like-this")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
