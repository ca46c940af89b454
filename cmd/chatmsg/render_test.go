package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRender(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"render"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		renderCmd.Flags().Set("indent", "false")
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRenderRecipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: {content: "Pay?"}
steps:
  - {op: requestTransfer, value: 5}
  - op: buttonRow
    buttons: [Yes, {text: No, value: no-val, next: read}]
`), 0o600))

	out, err := runRender(t, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"messages": [
			{"type": "text", "content": "Pay?"},
			{"type": "button", "content": [{"text": "Yes", "value": "Yes"}, {"text": "No", "value": "no-val"}]}
		],
		"options": {"value": 5, "nextStateAccess": "write", "next": {"no-val": {"stateAccess": "read"}}}
	}`, out)
}

func TestRenderIndent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hi.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seed": {"content": "hi"}, "steps": []}`), 0o600))

	out, err := runRender(t, "--indent", path)
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"messages\"")
}

func TestRenderValidationError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": [{"op": "updateOnTag", "tag": ""}]}`), 0o600))

	_, err := runRender(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_tag_name")
}

func TestRenderMissingFile(t *testing.T) {
	_, err := runRender(t, filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
