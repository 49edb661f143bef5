package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/draftkit/settings"
	"github.com/minios-linux/draftkit/translate"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	for _, env := range []string{"GOOGLE_API_KEY", "GROQ_API_KEY", "OPENAI_API_KEY"} {
		t.Setenv(env, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--lang", "en"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// gtxServer answers like the Google Translate web endpoint, prefixing
// every query with "EN ".
func gtxServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "실패" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode([]any{[]any{[]any{"EN " + q, q}}, nil, "ko"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCmd(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "draftkit version dev")
	assert.Contains(t, out, "commit:")
}

func TestProvidersCmd(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "", "providers")
	require.NoError(t, err)

	for _, id := range translate.ProviderIDs() {
		assert.Contains(t, out, id)
	}
	assert.Contains(t, out, "* google-translate")
	assert.Contains(t, out, "GROQ_API_KEY")
}

func TestConfigSetRootAndShow(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	root := t.TempDir()

	_, err := execute(t, "", "--config", cfgPath, "config", "set-root", root)
	require.NoError(t, err)
	assert.Equal(t, root, settings.Load(cfgPath).RootDir)

	out, err := execute(t, "", "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, root)
	assert.Contains(t, out, "google-translate")
	assert.Contains(t, out, "api_key:     (not set)")
}

func TestConfigSetRootRejectsFiles(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	file := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := execute(t, "", "--config", cfgPath, "config", "set-root", file)
	assert.ErrorIs(t, err, settings.ErrNotDirectory)
	assert.NoFileExists(t, cfgPath)
}

func TestConfigShowMasksKey(t *testing.T) {
	isolateEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, settings.Save(cfgPath, settings.Config{Provider: "groq", APIKey: "gsk_1234567890abcd"}))

	out, err := execute(t, "", "--config", cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "gsk_...abcd")
	assert.NotContains(t, out, "gsk_1234567890abcd")
}

func TestScanCmd(t *testing.T) {
	isolateEnv(t)
	root := t.TempDir()
	for _, f := range []string{"a.txt", "docs/Guide.md", ".hidden/b.txt"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	out, err := execute(t, "", "--root", root, "scan")
	require.NoError(t, err)
	assert.Equal(t, "a.txt\ndocs/Guide.md\n", out)

	out, err = execute(t, "", "--root", root, "scan", "guide")
	require.NoError(t, err)
	assert.Equal(t, "docs/Guide.md\n", out)
}

func TestScanCmdWithoutRoot(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "none.json"), "scan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no reference directory")
}

func TestTranslateCmdArgs(t *testing.T) {
	isolateEnv(t)
	srv := gtxServer(t)

	out, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "c.json"),
		"--base-url", srv.URL, "translate", "목표", "실패", "단계")
	require.NoError(t, err)
	assert.Equal(t, "EN 목표\n실패\nEN 단계\n", out)
}

func TestTranslateCmdStdin(t *testing.T) {
	isolateEnv(t)
	srv := gtxServer(t)

	out, err := execute(t, "첫째\n\n둘째\n", "--config", filepath.Join(t.TempDir(), "c.json"),
		"--provider", "google-translate", "--base-url", srv.URL, "translate")
	require.NoError(t, err)
	assert.Equal(t, "EN 첫째\n\nEN 둘째\n", out)
}

func TestTranslateCmdMissingKey(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "c.json"),
		"--provider", "groq", "translate", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}

func TestResolveProviderPrecedence(t *testing.T) {
	isolateEnv(t)
	newRootCmd()

	prov, err := resolveProvider(settings.Config{})
	require.NoError(t, err)
	assert.Equal(t, translate.DefaultProvider, prov.ID)

	cfg := settings.Config{Provider: "ollama", Model: "qwen2.5", BaseURL: "http://gpu:11434/v1"}
	prov, err = resolveProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "ollama", prov.ID)
	assert.Equal(t, "qwen2.5", prov.Model)
	assert.Equal(t, "http://gpu:11434/v1", prov.BaseURL)

	// Stored model and endpoint belong to the stored provider only.
	providerID = "groq"
	prov, err = resolveProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", prov.Model)
	assert.Equal(t, "https://api.groq.com/openai/v1", prov.BaseURL)

	t.Setenv("GROQ_API_KEY", "env-key")
	modelName = "mixtral"
	prov, err = resolveProvider(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mixtral", prov.Model)
	assert.Equal(t, "env-key", prov.APIKey)

	providerID = "nope"
	_, err = resolveProvider(cfg)
	assert.Error(t, err)
}

func TestMaxConcurrentDefaultsToSequential(t *testing.T) {
	f := newRootCmd().PersistentFlags().Lookup("max-concurrent")
	require.NotNil(t, f)
	assert.Equal(t, "1", f.DefValue)
	assert.Equal(t, 1, maxConcurrent)
}

func TestRootCmdRejectsArgs(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "", "unexpected")
	assert.Error(t, err)
}
