package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

// BackupMode represents the backup view mode.
type BackupMode int

const (
	BackupModeSelect BackupMode = iota
	BackupModeConfirmRestore
)

// BackupPicker handles the backup selection and restore UI.
type BackupPicker struct {
	backups  []protocol.BackupInfo
	cursor   int
	width    int
	mode     BackupMode
	loading  bool
	hostPath string
}

// NewBackupPicker creates a new backup picker.
func NewBackupPicker() *BackupPicker {
	return &BackupPicker{mode: BackupModeSelect}
}

// SetLoading marks the list as being fetched.
func (b *BackupPicker) SetLoading(hostPath string) {
	b.loading = true
	b.hostPath = hostPath
	b.mode = BackupModeSelect
}

// SetBackups updates the available backups.
func (b *BackupPicker) SetBackups(backups []protocol.BackupInfo) {
	b.loading = false
	b.backups = backups
	if b.cursor >= len(backups) {
		b.cursor = max(0, len(backups)-1)
	}
}

// SetSize sets the picker dimensions.
func (b *BackupPicker) SetSize(width, _ int) {
	b.width = width
}

// MoveUp moves the cursor up.
func (b *BackupPicker) MoveUp() {
	if b.cursor > 0 {
		b.cursor--
	}
}

// MoveDown moves the cursor down.
func (b *BackupPicker) MoveDown() {
	if b.cursor < len(b.backups)-1 {
		b.cursor++
	}
}

// Selected returns the currently selected backup name.
func (b *BackupPicker) Selected() string {
	if info := b.SelectedInfo(); info != nil {
		return info.Name
	}
	return ""
}

// SelectedInfo returns the currently selected backup info.
func (b *BackupPicker) SelectedInfo() *protocol.BackupInfo {
	if b.cursor >= 0 && b.cursor < len(b.backups) {
		return &b.backups[b.cursor]
	}
	return nil
}

// Len returns the number of backups.
func (b *BackupPicker) Len() int {
	return len(b.backups)
}

// Mode returns the current mode.
func (b *BackupPicker) Mode() BackupMode {
	return b.mode
}

// InitRestore starts restore confirmation.
func (b *BackupPicker) InitRestore() {
	if b.SelectedInfo() == nil {
		return
	}
	b.mode = BackupModeConfirmRestore
}

// Cancel cancels the current operation.
func (b *BackupPicker) Cancel() {
	b.mode = BackupModeSelect
}

// View renders the backup picker.
func (b *BackupPicker) View() string {
	if b.mode == BackupModeConfirmRestore {
		return b.restoreView()
	}
	return b.selectView()
}

func (b *BackupPicker) selectView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Backups"))
	sb.WriteString("\n\n")

	switch {
	case b.loading:
		sb.WriteString(pendingStyle.Render("◐ Loading..."))
		sb.WriteString("\n\n")
		sb.WriteString(helpDescStyle.Render("Esc back"))
		return dialogStyle.Render(sb.String())
	case len(b.backups) == 0:
		sb.WriteString(helpDescStyle.Render("No backups available."))
		sb.WriteString("\n\n")
		sb.WriteString(helpDescStyle.Render("A backup is taken before every write to the hosts file."))
		sb.WriteString("\n\n")
		sb.WriteString(helpDescStyle.Render("Esc back"))
		return dialogStyle.Render(sb.String())
	}

	rows := make([][]string, 0, len(b.backups))
	for _, backup := range b.backups {
		rows = append(rows, []string{formatTimestamp(backup.Timestamp), formatSize(backup.Size), backup.Name})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("TAKEN", "SIZE", "NAME").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Bold(true).Foreground(colorHeader)
			case row == b.cursor:
				return base.Background(colorSelectedBg).Foreground(colorSelectedFg)
			default:
				return base.Foreground(colorMuted)
			}
		})

	sb.WriteString(helpDescStyle.Render(fmt.Sprintf("%d backup(s)", len(b.backups))))
	sb.WriteString("\n")
	sb.WriteString(t.Render())
	sb.WriteString("\n\n")
	sb.WriteString(WrapHelpText("↑↓ navigate • Enter restore • Esc back", b.width-6))

	return dialogStyle.Render(sb.String())
}

func (b *BackupPicker) restoreView() string {
	var sb strings.Builder

	timestamp := ""
	if backup := b.SelectedInfo(); backup != nil {
		timestamp = formatTimestamp(backup.Timestamp)
	}

	sb.WriteString(titleStyle.Render("Restore Backup"))
	sb.WriteString("\n\n")
	sb.WriteString(errorMsgStyle.Render(fmt.Sprintf("Restore %s from backup '%s'?", b.hostPath, timestamp)))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render("This will replace the current hosts file."))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render("y confirm • n/Esc cancel"))

	return dialogStyle.Render(sb.String())
}

func formatTimestamp(unix int64) string {
	return time.Unix(unix, 0).Format("2006-01-02 15:04:05")
}

// formatSize formats bytes to human readable format.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
