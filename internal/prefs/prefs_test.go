package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeanticode/processing-openjdk/internal/prefs"
)

func TestDefaults(t *testing.T) {
	p := prefs.Defaults()
	assert.False(t, p.Bool(prefs.KeyFullScreen))
	assert.True(t, p.Bool(prefs.KeyStop))
	assert.Equal(t, "#666666", p.String(prefs.KeyBgColor))
	assert.Equal(t, "#cccccc", p.String(prefs.KeyStopColor))
	assert.Equal(t, "", p.String("editor.font"))
	assert.Len(t, p.Keys(), 4)
}

func TestNilPrefsFallsBack(t *testing.T) {
	var p *prefs.Prefs
	assert.True(t, p.Bool(prefs.KeyStop))
	assert.Equal(t, "#666666", p.String(prefs.KeyBgColor))
}

func TestParseLayersOverDefaults(t *testing.T) {
	p, err := prefs.Parse("# Processing preferences\nexport.application.fullscreen=true\nrun.present.bgcolor = #101010\neditor.tabs.size=2\n")
	require.NoError(t, err)
	assert.True(t, p.Bool(prefs.KeyFullScreen))
	assert.Equal(t, "#101010", p.String(prefs.KeyBgColor))
	assert.True(t, p.Bool(prefs.KeyStop))
	assert.Equal(t, "2", p.String("editor.tabs.size"))
}

func TestLoadAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.txt")
	require.NoError(t, os.WriteFile(path, []byte("export.application.stop=false\n"), 0o600))

	p, err := prefs.Load(path)
	require.NoError(t, err)
	assert.False(t, p.Bool(prefs.KeyStop))

	require.NoError(t, p.Override(map[string]string{prefs.KeyStopColor: "#ff0000"}))
	assert.Equal(t, "#ff0000", p.String(prefs.KeyStopColor))

	_, err = prefs.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
