package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/packages"
)

func sampleCatalog() *packages.Catalog {
	return &packages.Catalog{
		Entries: []packages.Entry{
			{Repository: "fedora", Packages: []string{"bash", "coreutils"}},
			{Repository: "updates", Packages: []string{}},
		},
		Failures: []packages.Failure{{Repository: "copr:broken", Kind: "exit", Message: "dnf: process exited with failure (code 1)"}},
		BuiltAt:  time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteCatalogText(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCatalog(&out, sampleCatalog(), "text"))

	assert.Equal(t, "fedora (2)\n  bash\n  coreutils\nupdates (0)\n! copr:broken: dnf: process exited with failure (code 1)\n", out.String())
}

func TestWriteCatalogJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCatalog(&out, sampleCatalog(), "json"))

	var doc struct {
		Repositories map[string][]string `json:"repositories"`
		Failures     []map[string]string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, []string{"bash", "coreutils"}, doc.Repositories["fedora"])
	assert.Equal(t, []string{}, doc.Repositories["updates"])
	require.Len(t, doc.Failures, 1)
	assert.Equal(t, "copr:broken", doc.Failures[0]["repository"])
}

func TestWriteCatalogYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeCatalog(&out, sampleCatalog(), "yaml"))

	var doc struct {
		Repositories map[string][]string `yaml:"repositories"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, []string{"bash", "coreutils"}, doc.Repositories["fedora"])
}

func TestWriteCatalogUnknownFormat(t *testing.T) {
	err := writeCatalog(&bytes.Buffer{}, sampleCatalog(), "xml")
	assert.ErrorIs(t, err, errUsage)
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: sysmgr")

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, &stdout, &stderr))

	stderr.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"query"}, &stdout, &stderr))
}

func TestRunPresets(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, run(context.Background(), []string{"presets"}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "Ubuntu  ubuntu\nFedora  fedora\nDebian  debian\n", stdout.String())
}

func TestRunLaunchRejectsMode(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"launch", "-mode", "window", "ubuntu"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "window")
}
