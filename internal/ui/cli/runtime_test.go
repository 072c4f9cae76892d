package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	coreapp "utoipauto/internal/core/app"
	"utoipauto/internal/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const libSource = `
#[utoipa::path(get, path = "/health")]
pub async fn health() {}

#[derive(utoipa::ToSchema)]
pub struct Pet { name: String }
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "lib.rs"), []byte(libSource), 0o644))
	return dir
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"-version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Equal(t, "utoipauto v"+versionString+"\n", stdout.String())
}

func TestRun_UnknownFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, Run([]string{"-nope"}, &stdout, &stderr))
}

func TestRun_PositionalPathSpec(t *testing.T) {
	dir := writeProject(t)
	var stdout, stderr bytes.Buffer

	code := Run([]string{"-format", "utoipa", filepath.Join(dir, "src")}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "paths(crate::health), components(schemas(crate::Pet), responses())\n", stdout.String())
}

func TestRun_NamespacedSpecAndOutputFile(t *testing.T) {
	dir := writeProject(t)
	target := filepath.Join(dir, "out", "discovered.tsv")
	var stdout, stderr bytes.Buffer

	spec := "( api => " + filepath.Join(dir, "src", "lib.rs") + " )"
	code := Run([]string{"-format", "tsv", "-output", target, "-paths", spec}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Kind\tName\nfn\tapi::health\nmodel\tapi::Pet\n", string(data))
	assert.Contains(t, stderr.String(), "1 paths, 1 schemas, 0 responses from 1 files -> "+target)
}

func TestRun_ExplicitConfigAnchorsPaths(t *testing.T) {
	dir := writeProject(t)
	cfgPath := filepath.Join(dir, "utoipauto.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
paths = "./src"

[discovery]
generic_full_path = true

[output]
format = "json"
`), 0o644))

	var stdout, stderr bytes.Buffer
	code := Run([]string{"-config", cfgPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var doc struct {
		Functions []string `json:"functions"`
		Schemas   []string `json:"schemas"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &doc))
	assert.Equal(t, []string{"crate::health"}, doc.Functions)
	assert.Equal(t, []string{"crate::Pet"}, doc.Schemas)
}

func TestRun_FailuresExitWithOne(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name string
		args []string
	}{
		{name: "MissingRoot", args: []string{filepath.Join(dir, "missing")}},
		{name: "MissingConfig", args: []string{"-config", filepath.Join(dir, "none.toml")}},
		{name: "BadFormat", args: []string{"-format", "yaml", dir}},
		{name: "BadMarker", args: []string{"-fn", "not a name", dir}},
		{name: "TooManyArgs", args: []string{dir, dir}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 1, Run(tc.args, &stdout, &stderr))
		})
	}
}

func TestApplyOptions(t *testing.T) {
	cwd := t.TempDir()

	t.Run("RejectsPathsWithPositional", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := applyOptions(cliOptions{paths: "./a", args: []string{"./b"}}, cfg, cwd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be combined")
	})

	t.Run("OverridesRootsAndMarkers", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Roots = []config.RootEntry{{Path: "./old"}}
		opts := cliOptions{
			args:         []string{"( crate::api => ./src/api )"},
			fnName:       "route",
			schemaName:   "Schema",
			responseName: "Reply",
			fullPath:     true,
			format:       "TSV",
			output:       "out.txt",
			history:      true,
			metricsAddr:  "127.0.0.1:0",
		}
		require.NoError(t, applyOptions(opts, cfg, cwd))

		assert.Empty(t, cfg.Paths)
		require.Len(t, cfg.Roots, 1)
		assert.Equal(t, "crate::api", cfg.Roots[0].Namespace)
		assert.Equal(t, filepath.Join(cwd, "src", "api"), cfg.Roots[0].Path)

		params := cfg.Params()
		assert.Equal(t, "route", params.FnAttributeName)
		assert.Equal(t, "Schema", params.SchemaAttributeName)
		assert.Equal(t, "Reply", params.ResponseAttributeName)
		assert.True(t, params.FullPath)
		assert.Equal(t, "tsv", cfg.Output.Format)
		assert.Equal(t, filepath.Join(cwd, "out.txt"), cfg.Output.Path)
		assert.True(t, cfg.History.Enabled)
		assert.True(t, cfg.Observability.Enabled)
		assert.Equal(t, "127.0.0.1:0", cfg.Observability.Address)
	})
}

func TestObservabilityServer(t *testing.T) {
	dir := writeProject(t)
	cfg := config.DefaultConfig()
	cfg.Paths = filepath.Join(dir, "src")

	a, err := coreapp.New(cfg, dir, io.Discard)
	require.NoError(t, err)
	defer a.Close()
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	server := NewObservabilityServer("127.0.0.1:0", coreapp.NewHealthService(a))
	require.NoError(t, server.Start(context.Background()))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	}()

	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status coreapp.HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "up", status.Status)
	assert.True(t, strings.HasPrefix(status.Components["last_run"], "ok"))

	metrics, err := client.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "utoipauto_files_scanned_total")
	assert.Contains(t, string(body), `utoipauto_last_run_items{bucket="functions"} 1`)
}

func TestObservabilityServer_BadAddress(t *testing.T) {
	server := NewObservabilityServer("256.0.0.1:-1", nil)
	assert.Error(t, server.Start(context.Background()))
}
