package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lintsuppress/internal/config"
	"lintsuppress/internal/model"
)

const sampleSource = "// Copyright 2017 Terrain Data, Inc.\nconst a: any = 1;\n"

// scriptedProject lays out a.ts next to a linter script that flags it.
func scriptedProject(t *testing.T) (*config.Config, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script linter stub needs a POSIX shell")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "tslint")
	script := "#!/bin/sh\necho '[{\"name\":\"a.ts\",\"ruleName\":\"no-any\",\"failure\":\"no any\"}]'\nexit 2\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	path := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(path, []byte(sampleSource), 0644))

	cfg := config.DefaultConfig(dir)
	cfg.Linter = bin
	require.NoError(t, cfg.Resolve())
	return cfg, path
}

func TestRunPatchMode_WritesFixes(t *testing.T) {
	cfg, path := scriptedProject(t)
	var stdout, stderr bytes.Buffer

	err := runPatchMode(context.Background(), cfg, zaptest.NewLogger(t), patchModeOptions{
		stdout: &stdout,
		stderr: &stderr,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "// Copyright 2017 Terrain Data, Inc.\n// tslint:disable:no-any\n\nconst a: any = 1;\n", string(got))
	assert.Equal(t, "Fixed "+path+":2 by adding // tslint:disable:no-any\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunPatchMode_DryRunJSON(t *testing.T) {
	cfg, path := scriptedProject(t)
	var stdout, stderr bytes.Buffer

	err := runPatchMode(context.Background(), cfg, zaptest.NewLogger(t), patchModeOptions{
		dryRun: true,
		json:   true,
		stdout: &stdout,
		stderr: &stderr,
	})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleSource, string(got))

	var plan model.Plan
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &plan))
	require.Len(t, plan.Fixes, 1)
	assert.Equal(t, path, plan.Fixes[0].Path)
	assert.Equal(t, 2, plan.Fixes[0].Line)
	assert.Empty(t, stderr.String())
}

func TestRunPatchMode_ReportToFile(t *testing.T) {
	cfg, path := scriptedProject(t)
	reportPath := filepath.Join(t.TempDir(), "report.txt")
	var stdout bytes.Buffer

	err := runPatchMode(context.Background(), cfg, zaptest.NewLogger(t), patchModeOptions{
		report: true,
		output: reportPath,
		stdout: &stdout,
		stderr: &stdout,
	})
	require.NoError(t, err)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "no-any")
	assert.Contains(t, stdout.String(), "Fixed "+path+":2")
	assert.Contains(t, stdout.String(), "Report saved to "+reportPath)
}

func TestWriteConfig(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Timeout = 90 * time.Second
	require.NoError(t, cfg.Resolve())
	path := filepath.Join(t.TempDir(), "conf", "lintsuppress.yaml")
	var out bytes.Buffer

	require.NoError(t, writeConfig(cfg, path, &out))
	assert.Equal(t, "Configuration saved to "+path+"\n", out.String())

	loaded, err := config.Load(path, "")
	require.NoError(t, err)
	require.NoError(t, loaded.Resolve())
	assert.Equal(t, cfg.WorkDir, loaded.WorkDir)
	assert.Equal(t, cfg.Linter, loaded.Linter)
	assert.Equal(t, cfg.LintConfig, loaded.LintConfig)
	assert.Equal(t, cfg.Project, loaded.Project)
	assert.Equal(t, cfg.Timeout, loaded.Timeout)
}
