package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

func TestAliasList_Navigation(t *testing.T) {
	l := NewAliasList()
	assert.Empty(t, l.Selected())

	l.SetAliases([]string{"a.local", "b.local", "c.local"})
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, "a.local", l.Selected())

	l.MoveDown()
	l.MoveDown()
	l.MoveDown()
	assert.Equal(t, "c.local", l.Selected())

	l.MoveUp()
	assert.Equal(t, "b.local", l.Selected())

	// Shrinking the list keeps the cursor in range.
	l.MoveDown()
	l.SetAliases([]string{"a.local"})
	assert.Equal(t, "a.local", l.Selected())

	l.SetAliases(nil)
	assert.Empty(t, l.Selected())
}

func TestAliasList_Pending(t *testing.T) {
	l := NewAliasList()
	l.SetAliases([]string{"a.local"})

	l.SetPending("a.local", true)
	assert.True(t, l.IsPending("a.local"))
	assert.Contains(t, l.View(), "Pending")

	l.SetPending("a.local", false)
	assert.False(t, l.IsPending("a.local"))

	// Pending marks for removed aliases are dropped.
	l.SetPending("a.local", true)
	l.SetAliases([]string{"b.local"})
	assert.False(t, l.IsPending("a.local"))
}

func TestAliasList_View(t *testing.T) {
	l := NewAliasList()
	assert.Contains(t, l.View(), "No aliases configured")

	l.SetAliases([]string{"host.wsl.internal"})
	l.SetAddress("172.20.10.5")
	view := l.View()
	assert.Contains(t, view, "ALIASES (1)")
	assert.Contains(t, view, "host.wsl.internal")
	assert.Contains(t, view, "172.20.10.5")
}

func TestInstancePicker(t *testing.T) {
	p := NewInstancePicker()
	assert.Equal(t, 1, p.Len())
	assert.Empty(t, p.Selected())
	assert.Contains(t, p.View(), defaultInstanceLabel)

	p.SetInstances([]string{"Ubuntu", "Debian"}, "Debian")
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, "Debian", p.Selected())

	p.MoveUp()
	assert.Equal(t, "Ubuntu", p.Selected())
	p.MoveUp()
	p.MoveUp()
	assert.Empty(t, p.Selected())

	p.SelectName("missing")
	assert.Empty(t, p.Selected())
}

func TestBackupPicker(t *testing.T) {
	b := NewBackupPicker()
	b.SetLoading("/etc/hosts")
	assert.Contains(t, b.View(), "Loading")

	b.SetBackups(nil)
	assert.Contains(t, b.View(), "No backups available")

	// Restore needs a selection.
	b.InitRestore()
	assert.Equal(t, BackupModeSelect, b.Mode())

	b.SetBackups([]protocol.BackupInfo{
		{Name: "hosts.20240102-000000.000000.bak", Timestamp: 1704153600, Size: 2048},
		{Name: "hosts.20240101-000000.000000.bak", Timestamp: 1704067200, Size: 100},
	})
	assert.Equal(t, 2, b.Len())
	assert.Contains(t, b.View(), "2 backup(s)")

	b.MoveDown()
	assert.Equal(t, "hosts.20240101-000000.000000.bak", b.Selected())

	b.InitRestore()
	assert.Equal(t, BackupModeConfirmRestore, b.Mode())
	assert.Contains(t, b.View(), "Restore /etc/hosts")

	b.Cancel()
	assert.Equal(t, BackupModeSelect, b.Mode())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "2.0 KB", formatSize(2048))
	assert.Equal(t, "1.5 MB", formatSize(1024*1024*3/2))
}

func TestForm_Validate(t *testing.T) {
	f := NewForm()

	f.InitAddAlias()
	assert.NotEmpty(t, f.Validate())

	typeText := func(s string) {
		for _, r := range s {
			f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}

	typeText("bad alias")
	assert.NotEmpty(t, f.Validate())

	f.InitAddAlias()
	typeText("api.wsl.internal")
	assert.Empty(t, f.Validate())
	assert.Equal(t, "api.wsl.internal", f.Value())
	assert.Equal(t, FormAddAlias, f.Kind())

	f.InitSetPath("/etc/hosts")
	assert.Equal(t, FormSetPath, f.Kind())
	assert.Equal(t, "/etc/hosts", f.Value())
	assert.Empty(t, f.Validate())
	assert.Contains(t, f.View(), "Hosts File Path")

	f.Cancel()
	assert.NotEmpty(t, f.Validate())
}

func TestWrapHelpText(t *testing.T) {
	text := "↑↓ navigate • Enter select • Esc back"

	assert.Equal(t, 1, strings.Count(WrapHelpText(text, 0), "\n")+1)

	wrapped := WrapHelpText(text, 16)
	lines := strings.Split(wrapped, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "navigate")
	assert.Contains(t, lines[2], "Esc back")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a-very...", truncate("a-very-long-alias", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
