// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/eiken-drill/eiken/internal/router"
	"github.com/eiken-drill/eiken/internal/screen"
	"github.com/eiken-drill/eiken/internal/screens/home"
	"github.com/eiken-drill/eiken/internal/screens/quiz"
	"github.com/eiken-drill/eiken/internal/selfupdate"
	"github.com/eiken-drill/eiken/internal/ui/layout"
)

// updateCheckTimeout bounds the background release check.
const updateCheckTimeout = 5 * time.Second

// Options holds the dependencies of the TUI.
type Options struct {
	screen.Deps

	// Version is the running version. Checker, when set, is asked for a
	// newer release on startup.
	Version string
	Checker *selfupdate.Checker
}

type updateAvailableMsg struct {
	Version string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	opts   Options
	latest string
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return AppModel{
		router: router.New(home.New(opts.Deps)),
		opts:   opts,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.checkUpdate()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case updateAvailableMsg:
		m.latest = msg.Version
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			m.abandon()
			return m, tea.Quit
		case "esc":
			if bi, ok := m.router.Active().(screen.BackInterceptor); ok {
				if handled, cmd := bi.HandleBack(); handled {
					return m, cmd
				}
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// abandon ends a running session on quit and records it.
func (m AppModel) abandon() {
	if m.opts.Controller == nil {
		return
	}
	res := m.opts.Controller.Home()
	if res == nil || m.opts.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.opts.Events.AppendSessionEvent(ctx, quiz.SessionEvent(res)); err != nil {
		m.opts.Logger.Warn("event not recorded", zap.String("session_id", res.SessionID), zap.Error(err))
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the frame around the active screen.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	header := layout.RenderHeader(active.Title(), m.status(), m.width)

	var footerHints []layout.KeyHint
	if p, ok := active.(screen.KeyHintProvider); ok {
		footerHints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	content := m.router.View(m.width, layout.ContentHeight(header, footer, m.height))
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// status is the right side of the header.
func (m AppModel) status() string {
	s := ""
	if n := m.opts.MistakeCount(); n > 0 {
		s = fmt.Sprintf("✗ %d to review", n)
	}
	if m.latest != "" {
		if s != "" {
			s += "   "
		}
		s += "⬆ " + m.latest
	}
	return s
}

func (m AppModel) checkUpdate() tea.Cmd {
	checker, version, logger := m.opts.Checker, m.opts.Version, m.opts.Logger
	if checker == nil || version == "" || version == selfupdate.DevVersion {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), updateCheckTimeout)
		defer cancel()
		res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil {
			logger.Debug("update check failed", zap.Error(err))
			return nil
		}
		if !res.UpdateAvailable {
			return nil
		}
		return updateAvailableMsg{Version: res.LatestVersion}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Controller == nil || opts.Catalog == nil {
		return fmt.Errorf("app: controller and catalog are required")
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}
