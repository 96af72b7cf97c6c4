package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukaszraczylo/wsl2-ip-host/internal/client"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/hosts"
	"github.com/lukaszraczylo/wsl2-ip-host/internal/protocol"
)

// ViewMode represents the current view mode.
type ViewMode int

const (
	ViewMain ViewMode = iota
	ViewForm
	ViewInstances
	ViewBackups
	ViewHelp
	ViewConfirmDelete
)

// ContentMode selects what the content viewport shows.
type ContentMode int

const (
	// ContentRaw shows the hosts file as it is on disk.
	ContentRaw ContentMode = iota
	// ContentPreview shows what a commit would write.
	ContentPreview
)

func (c ContentMode) String() string {
	if c == ContentPreview {
		return "Preview"
	}
	return "Hosts file"
}

// Options configures the TUI.
type Options struct {
	Logger  *slog.Logger
	Version string
	// Watch reloads the raw view when the target file changes on disk.
	Watch bool
}

// Model is the main Bubble Tea model.
type Model struct {
	client *client.Client
	log    *slog.Logger

	// Views
	mode      ViewMode
	aliases   *AliasList
	form      *Form
	instances *InstancePicker
	backups   *BackupPicker
	content   viewport.Model
	spinner   spinner.Model

	// State
	snapshot      protocol.Snapshot
	access        *protocol.AccessInfo
	contentMode   ContentMode
	lines         []string
	pending       int
	width         int
	height        int
	message       string
	messageStyle  string // "error" or "success"
	pendingDelete string
	version       string

	watchEnabled bool
	watch        *hostsWatch
}

// Message types
type (
	initMsg struct {
		resp *protocol.Response
		err  error
	}
	aliasMsg struct {
		alias    string
		added    bool
		snapshot *protocol.Snapshot
		err      error
	}
	pathMsg struct {
		snapshot *protocol.Snapshot
		err      error
	}
	linesMsg struct {
		mode  ContentMode
		lines []string
		quiet bool
		err   error
	}
	commitMsg struct {
		resp *protocol.Response
		err  error
	}
	accessMsg struct {
		access *protocol.AccessInfo
		err    error
	}
	instanceMsg struct {
		name string
		err  error
	}
	savedMsg struct {
		message string
		err     error
	}
	backupsMsg struct {
		backups []protocol.BackupInfo
		err     error
	}
	restoreMsg struct {
		message string
		err     error
	}
	hostsChangedMsg struct {
		path string
	}
	clearMsgMsg struct {
		message string
	}
)

// requestResult is implemented by every message carrying a coordinator reply.
type requestResult interface{ requestDone() }

func (initMsg) requestDone()     {}
func (aliasMsg) requestDone()    {}
func (pathMsg) requestDone()     {}
func (linesMsg) requestDone()    {}
func (commitMsg) requestDone()   {}
func (accessMsg) requestDone()   {}
func (instanceMsg) requestDone() {}
func (savedMsg) requestDone()    {}
func (backupsMsg) requestDone()  {}
func (restoreMsg) requestDone()  {}

// NewModel creates a model talking to the coordinator through c.
func NewModel(c *client.Client, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	content := viewport.New(80, 10)
	content.KeyMap = contentKeyMap()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = pendingStyle

	return &Model{
		client:       c,
		log:          logger,
		mode:         ViewMain,
		aliases:      NewAliasList(),
		form:         NewForm(),
		instances:    NewInstancePicker(),
		backups:      NewBackupPicker(),
		content:      content,
		spinner:      s,
		version:      opts.Version,
		watchEnabled: opts.Watch,
	}
}

// contentKeyMap keeps viewport scrolling off the keys used for commands.
func contentKeyMap() viewport.KeyMap {
	km := viewport.DefaultKeyMap()
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.Down = key.NewBinding(key.WithKeys("shift+down", "J"))
	km.Up = key.NewBinding(key.WithKeys("shift+up", "K"))
	return km
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.request(m.initialize())
}

// request marks a coordinator call as in flight.
func (m *Model) request(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *Model) initialize() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Initialize()
		return initMsg{resp: resp, err: err}
	}
}

func (m *Model) addAlias(name string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.client.AddAlias(name)
		return aliasMsg{alias: name, added: true, snapshot: snap, err: err}
	}
}

func (m *Model) removeAlias(name string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.client.RemoveAlias(name)
		return aliasMsg{alias: name, snapshot: snap, err: err}
	}
}

func (m *Model) setTargetPath(path string) tea.Cmd {
	return func() tea.Msg {
		snap, err := m.client.SetTargetPath(path)
		return pathMsg{snapshot: snap, err: err}
	}
}

func (m *Model) readRaw(quiet bool) tea.Cmd {
	return func() tea.Msg {
		lines, err := m.client.ReadRaw()
		return linesMsg{mode: ContentRaw, lines: lines, quiet: quiet, err: err}
	}
}

func (m *Model) preview() tea.Cmd {
	return func() tea.Msg {
		lines, err := m.client.Preview()
		return linesMsg{mode: ContentPreview, lines: lines, err: err}
	}
}

func (m *Model) commit() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.client.Commit()
		return commitMsg{resp: resp, err: err}
	}
}

func (m *Model) checkAccess() tea.Cmd {
	return func() tea.Msg {
		access, err := m.client.CheckAccess()
		return accessMsg{access: access, err: err}
	}
}

func (m *Model) setInstance(name string) tea.Cmd {
	return func() tea.Msg {
		return instanceMsg{name: name, err: m.client.SetInstance(name)}
	}
}

func (m *Model) saveSettings() tea.Cmd {
	return func() tea.Msg {
		message, err := m.client.SaveSettings()
		return savedMsg{message: message, err: err}
	}
}

func (m *Model) listBackups() tea.Cmd {
	return func() tea.Msg {
		backups, err := m.client.ListBackups()
		return backupsMsg{backups: backups, err: err}
	}
}

func (m *Model) restoreBackup(name string) tea.Cmd {
	return func() tea.Msg {
		message, err := m.client.RestoreBackup(name)
		return restoreMsg{message: message, err: err}
	}
}

func (m *Model) clearMsg() tea.Cmd {
	message := m.message
	return tea.Tick(time.Second*3, func(time.Time) tea.Msg {
		return clearMsgMsg{message: message}
	})
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(requestResult); ok && m.pending > 0 {
		m.pending--
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.SetSize(msg.Width, msg.Height)
		m.instances.SetSize(msg.Width, msg.Height)
		m.backups.SetSize(msg.Width, msg.Height)
		m.aliases.SetWidth(msg.Width)
		m.resize()

	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case initMsg:
		if msg.resp != nil {
			if msg.resp.Snapshot != nil {
				m.applySnapshot(msg.resp.Snapshot)
			}
			m.instances.SetInstances(msg.resp.Distros, m.snapshot.Distro)
		}
		if msg.err != nil {
			cmds = append(cmds, m.fail("Initialize failed", msg.err))
		} else if msg.resp.Message != "" {
			// Initialize committed on start.
			m.setSuccess(msg.resp.Message)
			cmds = append(cmds, m.clearMsg())
		}
		cmds = append(cmds, m.request(m.checkAccess()), m.request(m.readRaw(true)))
		if cmd := m.restartWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case aliasMsg:
		m.aliases.SetPending(msg.alias, false)
		if msg.err != nil {
			cmds = append(cmds, m.fail(fmt.Sprintf("Alias %s failed", msg.alias), msg.err))
			break
		}
		m.applySnapshot(msg.snapshot)
		if msg.added {
			m.setSuccess(fmt.Sprintf("Added alias: %s", msg.alias))
		} else {
			m.setSuccess(fmt.Sprintf("Removed alias: %s", msg.alias))
		}
		cmds = append(cmds, m.clearMsg())
		if m.contentMode == ContentPreview {
			cmds = append(cmds, m.request(m.preview()))
		}

	case pathMsg:
		if msg.err != nil {
			cmds = append(cmds, m.fail("Set path failed", msg.err))
			break
		}
		m.applySnapshot(msg.snapshot)
		m.access = nil
		m.setSuccess(fmt.Sprintf("Target path: %s", m.snapshot.HostsPath))
		cmds = append(cmds, m.clearMsg(), m.request(m.checkAccess()), m.reload())
		if cmd := m.restartWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case linesMsg:
		if msg.err != nil {
			if !msg.quiet {
				cmds = append(cmds, m.fail(msg.mode.String()+" failed", msg.err))
			} else if errors.Is(msg.err, client.ErrStopped) {
				cmds = append(cmds, tea.Quit)
			}
			m.contentMode = msg.mode
			m.setLines(nil)
			break
		}
		m.contentMode = msg.mode
		m.setLines(msg.lines)

	case commitMsg:
		if msg.err != nil {
			cmds = append(cmds, m.fail("Commit failed", msg.err))
			break
		}
		if msg.resp.Snapshot != nil {
			m.applySnapshot(msg.resp.Snapshot)
		}
		if len(msg.resp.Lines) > 0 {
			m.contentMode = ContentRaw
			m.setLines(msg.resp.Lines)
		}
		m.log.Info("commit finished", "message", msg.resp.Message, "elevated", msg.resp.Elevated)
		m.setSuccess(msg.resp.Message)
		cmds = append(cmds, m.clearMsg(), m.request(m.checkAccess()))

	case accessMsg:
		if msg.err != nil {
			cmds = append(cmds, m.fail("Access check failed", msg.err))
			break
		}
		m.access = msg.access

	case instanceMsg:
		if msg.err != nil {
			cmds = append(cmds, m.fail("Select instance failed", msg.err))
			break
		}
		m.snapshot.Distro = msg.name
		m.setSuccess(fmt.Sprintf("Instance: %s", instanceLabel(msg.name)))
		cmds = append(cmds, m.clearMsg())
		if m.contentMode == ContentPreview {
			cmds = append(cmds, m.request(m.preview()))
		}

	case savedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.fail("Save failed", msg.err))
			break
		}
		m.setSuccess(msg.message)
		cmds = append(cmds, m.clearMsg())

	case backupsMsg:
		if msg.err != nil {
			m.backups.SetBackups(nil)
			cmds = append(cmds, m.fail("Listing backups failed", msg.err))
			break
		}
		m.backups.SetBackups(msg.backups)

	case restoreMsg:
		m.mode = ViewMain
		m.backups.Cancel()
		if msg.err != nil {
			cmds = append(cmds, m.fail("Restore failed", msg.err))
			break
		}
		m.setSuccess(msg.message)
		cmds = append(cmds, m.clearMsg(), m.reload())

	case hostsChangedMsg:
		if m.watch == nil || m.watch.path != msg.path {
			break
		}
		cmds = append(cmds, m.watch.wait())
		if m.contentMode == ContentRaw {
			m.log.Debug("hosts file changed on disk", "path", msg.path)
			cmds = append(cmds, m.request(m.readRaw(true)))
		}

	case clearMsgMsg:
		if m.message == msg.message {
			m.message = ""
		}

	default:
		if m.mode == ViewMain {
			var cmd tea.Cmd
			m.content, cmd = m.content.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// reload refreshes the content viewport in its current mode.
func (m *Model) reload() tea.Cmd {
	if m.contentMode == ContentPreview {
		return m.request(m.preview())
	}
	return m.request(m.readRaw(false))
}

// fail reports err, quitting once the coordinator is gone.
func (m *Model) fail(prefix string, err error) tea.Cmd {
	if errors.Is(err, client.ErrStopped) {
		m.setError("Coordinator stopped")
		return tea.Quit
	}
	m.log.Warn("request failed", "operation", prefix, "error", err)
	m.setError(fmt.Sprintf("%s: %v", prefix, err))
	return m.clearMsg()
}

func (m *Model) applySnapshot(snap *protocol.Snapshot) {
	if snap == nil {
		return
	}
	m.snapshot = *snap
	m.aliases.SetAliases(snap.Aliases)
	m.aliases.SetAddress(snap.LastAddress)
	m.resize()
}

func (m *Model) setLines(lines []string) {
	m.lines = lines

	var sb strings.Builder
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		if hosts.IsManaged(line) {
			sb.WriteString(managedLineStyle.Render(line))
		} else {
			sb.WriteString(line)
		}
	}
	m.content.SetContent(sb.String())
	m.content.GotoTop()
}

// resize fits the content viewport below the header and alias table.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}

	aliasLines := 1
	if n := m.aliases.Len(); n > 0 {
		aliasLines = n + 5
	}
	const headerLines, footerLines, chrome = 6, 4, 3
	height := m.height - headerLines - aliasLines - footerLines - chrome
	m.content.Width = max(20, m.width-4)
	m.content.Height = max(3, height)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch m.mode {
	case ViewForm:
		return m.handleFormKey(msg)
	case ViewInstances:
		return m.handleInstanceKey(msg)
	case ViewBackups:
		return m.handleBackupKey(msg)
	case ViewHelp:
		return m.handleHelpKey(msg)
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

func (m *Model) handleMainKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		m.aliases.MoveUp()
	case "down", "j":
		m.aliases.MoveDown()
	case "a":
		m.form.InitAddAlias()
		m.mode = ViewForm
	case "d", "delete":
		if alias := m.aliases.Selected(); alias != "" {
			m.pendingDelete = alias
			m.mode = ViewConfirmDelete
		}
	case "r":
		m.contentMode = ContentRaw
		return m.request(m.readRaw(false))
	case "v":
		m.contentMode = ContentPreview
		return m.request(m.preview())
	case "w":
		return m.request(m.commit())
	case "p":
		m.form.InitSetPath(m.snapshot.HostsPath)
		m.mode = ViewForm
	case "i":
		m.instances.SelectName(m.snapshot.Distro)
		m.mode = ViewInstances
	case "s":
		return m.request(m.saveSettings())
	case "b":
		m.backups.SetLoading(m.snapshot.HostsPath)
		m.mode = ViewBackups
		return m.request(m.listBackups())
	case "?":
		m.mode = ViewHelp
	default:
		var cmd tea.Cmd
		m.content, cmd = m.content.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.form.Cancel()
		m.mode = ViewMain
		return nil
	case "enter":
		if problem := m.form.Validate(); problem != "" {
			m.setError(problem)
			return m.clearMsg()
		}
		value := m.form.Value()
		kind := m.form.Kind()
		m.form.Cancel()
		m.mode = ViewMain
		if kind == FormSetPath {
			return m.request(m.setTargetPath(value))
		}
		m.aliases.SetPending(value, true)
		return m.request(m.addAlias(value))
	}
	return m.form.Update(msg)
}

func (m *Model) handleInstanceKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		m.mode = ViewMain
	case "up", "k":
		m.instances.MoveUp()
	case "down", "j":
		m.instances.MoveDown()
	case "enter":
		m.mode = ViewMain
		return m.request(m.setInstance(m.instances.Selected()))
	}
	return nil
}

func (m *Model) handleBackupKey(msg tea.KeyMsg) tea.Cmd {
	if m.backups.Mode() == BackupModeConfirmRestore {
		switch msg.String() {
		case "y", "Y":
			return m.request(m.restoreBackup(m.backups.Selected()))
		case "n", "N", "esc":
			m.backups.Cancel()
		}
		return nil
	}

	switch msg.String() {
	case "esc", "q":
		m.mode = ViewMain
	case "up", "k":
		m.backups.MoveUp()
	case "down", "j":
		m.backups.MoveDown()
	case "enter":
		m.backups.InitRestore()
	}
	return nil
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "?", "esc", "q":
		m.mode = ViewMain
	}
	return nil
}

func (m *Model) handleConfirmDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		alias := m.pendingDelete
		m.pendingDelete = ""
		m.mode = ViewMain
		m.aliases.SetPending(alias, true)
		return m.request(m.removeAlias(alias))
	case "n", "N", "esc":
		m.pendingDelete = ""
		m.mode = ViewMain
	}
	return nil
}

func (m *Model) setError(msg string) {
	m.message = msg
	m.messageStyle = "error"
}

func (m *Model) setSuccess(msg string) {
	m.message = msg
	m.messageStyle = "success"
}

// View renders the UI.
func (m *Model) View() string {
	var sb strings.Builder

	title := "wsl2-ip-host"
	if m.version != "" {
		title += " " + m.version
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	switch m.mode {
	case ViewForm:
		sb.WriteString(m.form.View())
	case ViewInstances:
		sb.WriteString(m.instances.View())
	case ViewBackups:
		sb.WriteString(m.backups.View())
	case ViewHelp:
		sb.WriteString(m.helpView())
	case ViewConfirmDelete:
		sb.WriteString(m.confirmDeleteView())
	default:
		sb.WriteString(m.mainView())
	}

	if m.message != "" {
		sb.WriteString("\n")
		if m.messageStyle == "error" {
			sb.WriteString(errorMsgStyle.Render(m.message))
		} else {
			sb.WriteString(successMsgStyle.Render(m.message))
		}
	}

	var helpBarContent string
	footerHeight := 2
	if m.mode == ViewMain {
		helpBarContent = m.helpBar()
		footerHeight += strings.Count(helpBarContent, "\n") + 2
	}

	currentLines := strings.Count(sb.String(), "\n") + 1
	if remaining := m.height - currentLines - footerHeight; remaining > 0 {
		sb.WriteString(strings.Repeat("\n", remaining))
	}

	if m.mode == ViewMain {
		sb.WriteString("\n")
		sb.WriteString(helpBarContent)
	}
	sb.WriteString("\n")
	sb.WriteString(m.statusBar())

	return sb.String()
}

func (m *Model) mainView() string {
	var sb strings.Builder

	label := func(s string) string { return helpKeyStyle.Width(10).Render(s) }

	sb.WriteString(fmt.Sprintf("  %s %s\n", label("Path"), m.snapshot.HostsPath))
	sb.WriteString(fmt.Sprintf("  %s %s\n", label("Instance"), instanceLabel(m.snapshot.Distro)))

	readable, writable, known := false, false, m.access != nil
	if known {
		readable, writable = m.access.Readable, m.access.Writable
	}
	sb.WriteString(fmt.Sprintf("  %s %s  %s\n", label("Access"),
		AccessText("readable", readable, known), AccessText("writable", writable, known)))

	address := m.snapshot.LastAddress
	if address == "" {
		address = helpDescStyle.Render("not discovered yet")
	}
	sb.WriteString(fmt.Sprintf("  %s %s\n\n", label("Address"), address))

	sb.WriteString(m.aliases.View())
	sb.WriteString("\n\n")

	sb.WriteString(sectionStyle.Render(" " + strings.ToUpper(m.contentMode.String())))
	sb.WriteString("\n")
	if len(m.lines) == 0 {
		sb.WriteString(contentStyle.Render(helpDescStyle.Render("Nothing to show. Press 'r' to read or 'v' to preview.")))
	} else {
		sb.WriteString(contentStyle.Render(m.content.View()))
	}

	return sb.String()
}

func (m *Model) helpBar() string {
	items := []struct{ key, desc string }{
		{"↑↓", "Select"},
		{"a", "Add"},
		{"d", "Delete"},
		{"r", "Read"},
		{"v", "Preview"},
		{"w", "Write"},
		{"p", "Path"},
		{"i", "Instance"},
		{"s", "Save"},
		{"b", "Backups"},
		{"?", "Help"},
		{"q", "Quit"},
	}

	maxWidth := m.width
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var lines []string
	var line strings.Builder
	width := 0
	for _, item := range items {
		itemWidth := len([]rune(item.key)) + 1 + len(item.desc)
		if width > 0 && width+2+itemWidth > maxWidth {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		if width > 0 {
			line.WriteString("  ")
			width += 2
		}
		line.WriteString(helpKeyStyle.Render(item.key))
		line.WriteString(" ")
		line.WriteString(helpDescStyle.Render(item.desc))
		width += itemWidth
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return helpBarStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) statusBar() string {
	activity := Indicator(true, false) + " idle"
	if m.pending > 0 {
		activity = m.spinner.View() + " working"
	}

	watching := "watch off"
	if m.watch != nil {
		watching = "watching"
	}

	return statusBarStyle.Render(fmt.Sprintf("%s  |  %d alias(es)  |  %s", activity, m.aliases.Len(), watching))
}

func (m *Model) helpView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Help"))
	sb.WriteString("\n\n")

	help := []struct{ key, desc string }{
		{"↑/↓ or j/k", "Select alias"},
		{"a", "Add alias"},
		{"d", "Delete selected alias"},
		{"r", "Show the hosts file"},
		{"v", "Preview the next write"},
		{"w", "Discover the address and write"},
		{"p", "Change the hosts file path"},
		{"i", "Pick the WSL instance"},
		{"s", "Save settings"},
		{"b", "Open backup manager"},
		{"PgUp/PgDn", "Scroll content"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, h := range help {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(15).Render(h.key),
			helpDescStyle.Render(h.desc)))
	}

	sb.WriteString("\n")
	sb.WriteString(inputLabelStyle.Render("Managed lines end with:"))
	sb.WriteString("\n")
	sb.WriteString(managedLineStyle.Render("  " + hosts.Sentinel))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render("Press ? or Esc to close"))

	return dialogStyle.Render(sb.String())
}

func (m *Model) confirmDeleteView() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Confirm Delete"))
	sb.WriteString("\n\n")
	sb.WriteString(pendingStyle.Bold(true).Render("Remove this alias?"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  Alias: %s\n", helpKeyStyle.Render(m.pendingDelete)))
	sb.WriteString("\n")
	sb.WriteString(helpDescStyle.Render("The managed line is dropped on the next write."))
	sb.WriteString("\n\n")
	sb.WriteString(helpDescStyle.Render("y confirm • n/Esc cancel"))

	return dialogStyle.Render(sb.String())
}

func instanceLabel(name string) string {
	if name == "" {
		return defaultInstanceLabel
	}
	return name
}

// hostsWatch forwards change notifications for one target path.
type hostsWatch struct {
	path    string
	watcher *hosts.Watcher
	changes chan struct{}
	done    chan struct{}
}

func startWatch(path string) (*hostsWatch, error) {
	hw := &hostsWatch{
		path:    path,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w, err := hosts.Watch(path, func() {
		select {
		case hw.changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return nil, err
	}
	hw.watcher = w
	return hw, nil
}

// wait blocks until the next change, or returns nil once stopped.
func (hw *hostsWatch) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-hw.changes:
			return hostsChangedMsg{path: hw.path}
		case <-hw.done:
			return nil
		}
	}
}

func (hw *hostsWatch) stop() error {
	err := hw.watcher.Stop()
	close(hw.done)
	return err
}

// restartWatch moves the watcher to the current target path.
func (m *Model) restartWatch() tea.Cmd {
	if !m.watchEnabled || m.snapshot.HostsPath == "" {
		return nil
	}
	if m.watch != nil && m.watch.path == m.snapshot.HostsPath {
		return nil
	}
	m.stopWatch()

	hw, err := startWatch(m.snapshot.HostsPath)
	if err != nil {
		m.log.Warn("failed to watch hosts file", "path", m.snapshot.HostsPath, "error", err)
		return nil
	}
	m.watch = hw
	return hw.wait()
}

func (m *Model) stopWatch() {
	if m.watch == nil {
		return
	}
	if err := m.watch.stop(); err != nil {
		m.log.Debug("failed to stop watcher", "error", err)
	}
	m.watch = nil
}

// Run starts the TUI and blocks until it exits. The coordinator is always
// shut down on return.
func Run(ctx context.Context, c *client.Client, opts Options) error {
	m := NewModel(c, opts)
	defer func() {
		m.stopWatch()
		if err := c.Shutdown(); err != nil {
			m.log.Warn("failed to shut down coordinator", "error", err)
		}
	}()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
