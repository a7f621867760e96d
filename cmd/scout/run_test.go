package main

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunCommand_MissingAPIKey(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "run", "--db-url", filepath.Join(tmpDir, "scout.db"))
	// Strip the environment so SORSA_API_KEY cannot leak in, and run away
	// from any .env file
	cmd.Env = []string{}
	cmd.Dir = tmpDir
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "APIKey")
}

func TestRunCommand_InvalidConfigPath(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "run", "--config", "/nonexistent/config.json")
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "failed to load config")
}

func TestRunCommand_InvalidRegistryPath(t *testing.T) {
	binaryPath := getBinaryPath(t)
	tmpDir := t.TempDir()

	cmd := exec.Command(binaryPath, "run",
		"--api-key", "test-key",
		"--db-url", filepath.Join(tmpDir, "scout.db"),
		"--registry", "/nonexistent/registry.json")
	cmd.Dir = tmpDir
	output, err := cmd.CombinedOutput()

	assert.Error(t, err)
	assert.Contains(t, string(output), "registry file not found")
}

func TestRunCommand_Help(t *testing.T) {
	binaryPath := getBinaryPath(t)

	cmd := exec.Command(binaryPath, "run", "--help")
	output, err := cmd.CombinedOutput()

	assert.NoError(t, err)
	assert.Contains(t, string(output), "--batch-size")
	assert.Contains(t, string(output), "--max-followers")
	assert.Contains(t, string(output), "--min-score")
	assert.Contains(t, string(output), "--sheet-id")
}
