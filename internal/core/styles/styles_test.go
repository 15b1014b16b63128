package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"gruvbox", "plain", "tokyo-night"}, Themes())
	assert.Contains(t, Themes(), DefaultTheme)
}

func TestTheme(t *testing.T) {
	p, ok := Theme("gruvbox")
	require.True(t, ok)
	assert.Equal(t, "#83a598", string(p.Primary))

	plain, ok := Theme("plain")
	require.True(t, ok)
	assert.Equal(t, Palette{}, plain)

	_, ok = Theme("solarized")
	assert.False(t, ok)
}

func TestSetTheme_PlainKeepsText(t *testing.T) {
	t.Cleanup(func() { SetTheme(themes[DefaultTheme]) })

	SetTheme(Palette{})
	assert.Contains(t, ErrorStyle.Render("oops"), "oops")
	assert.Contains(t, HeaderStyle.Render("tasktalk"), "tasktalk")
}
