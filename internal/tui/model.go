// Package tui is the terminal client: a bubbletea program over a single
// playthrough, with the enemy's reply paced by a timer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"xianxia/internal/combat"
	"xianxia/internal/game"
	"xianxia/internal/play"
	"xianxia/internal/session"
)

// EnemyDelay is the pause before the enemy answers a player action.
const EnemyDelay = 1500 * time.Millisecond

// QuickSlot is the save slot the s/l keys use.
const QuickSlot = "quick"

const (
	barWidth     = 20
	defaultWidth = 80
	sidebarWidth = 28
)

type enemyTurnMsg struct{}

type model struct {
	ctx   context.Context
	play  *play.Playthrough
	saves session.Store[play.SaveData]
	delay time.Duration

	renderer *glamour.TermRenderer
	styles   styles
	width    int
	status   string
}

func newModel(ctx context.Context, p *play.Playthrough, saves session.Store[play.SaveData]) model {
	return model{
		ctx:      ctx,
		play:     p,
		saves:    saves,
		delay:    EnemyDelay,
		renderer: newRenderer(mainWidth(defaultWidth)),
		styles:   newStyles(ink),
		width:    defaultWidth,
	}
}

func mainWidth(total int) int { return max(20, total-sidebarWidth-4) }

// newRenderer returns nil when glamour cannot be set up; chapters are then
// shown as raw markdown.
func newRenderer(width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return nil
	}
	return r
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.renderer = newRenderer(mainWidth(msg.Width))
		return m, nil
	case enemyTurnMsg:
		if err := m.play.EnemyTurn(); err != nil && !errors.Is(err, play.ErrNotInCombat) {
			m.status = err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m model) handleKey(k string) (tea.Model, tea.Cmd) {
	m.status = ""
	switch k {
	case "ctrl+c", "q":
		return m, tea.Quit
	}
	if m.play.InCombat() {
		return m.combatKey(k)
	}
	switch k {
	case "r":
		if err := m.play.Reset(); err != nil {
			m.status = err.Error()
		}
	case "s":
		m.quickSave()
	case "l":
		m.quickLoad()
	default:
		if idx, ok := digit(k); ok {
			if err := m.play.Choose(idx); err != nil {
				m.status = err.Error()
			}
		}
	}
	return m, nil
}

// combatKey maps a for attack, d for defend and 1-9 for the listed skills.
// While the enemy's reply is pending every key but quit is ignored.
func (m model) combatKey(k string) (tea.Model, tea.Cmd) {
	if m.play.AwaitingEnemy() {
		return m, nil
	}
	var err error
	switch k {
	case "a":
		err = m.play.Attack()
	case "d":
		err = m.play.Defend()
	default:
		idx, ok := digit(k)
		if !ok {
			return m, nil
		}
		skills := m.play.View().Combat.Skills
		if idx >= len(skills) {
			return m, nil
		}
		err = m.play.UseSkill(skills[idx].ID)
	}
	if err != nil && !isRejection(err) {
		m.status = err.Error()
	}
	if m.play.AwaitingEnemy() {
		return m, tea.Tick(m.delay, func(time.Time) tea.Msg { return enemyTurnMsg{} })
	}
	return m, nil
}

func isRejection(err error) bool {
	return errors.Is(err, combat.ErrInsufficientResource) ||
		errors.Is(err, combat.ErrSkillLocked) ||
		errors.Is(err, combat.ErrUnknownSkill)
}

func (m *model) quickSave() {
	if m.saves == nil {
		m.status = "saving is not available"
		return
	}
	if err := m.saves.Put(m.ctx, QuickSlot, m.play.Snapshot()); err != nil {
		m.status = "save failed: " + err.Error()
		return
	}
	m.status = "Saved."
}

func (m *model) quickLoad() {
	if m.saves == nil {
		m.status = "loading is not available"
		return
	}
	data, ok, err := m.saves.Get(m.ctx, QuickSlot)
	switch {
	case err != nil:
		m.status = "load failed: " + err.Error()
	case !ok:
		m.status = "No saved game."
	default:
		if err := m.play.Restore(data); err != nil {
			m.status = "load failed: " + err.Error()
			return
		}
		m.status = "Loaded."
	}
}

// digit maps "1".."9" to a zero-based index.
func digit(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return 0, false
	}
	return int(k[0] - '1'), true
}

func (m model) View() string {
	v := m.play.View()
	var body string
	if v.Combat != nil {
		body = m.combatView(v)
	} else {
		body = m.chapterView(v)
	}
	main := lipgloss.NewStyle().Width(mainWidth(m.width)).Render(body)
	side := m.styles.panel.Width(sidebarWidth).Render(m.sidebar(v))
	return lipgloss.JoinHorizontal(lipgloss.Top, main, side) + "\n" + m.footer(v)
}

func (m model) chapterView(v play.View) string {
	var b strings.Builder
	b.WriteString(m.markdown(chapterMarkdown(v)))
	for _, line := range v.Aftermath {
		b.WriteString(m.styles.muted.Render(line) + "\n")
	}
	if v.Notice != "" {
		b.WriteString(m.styles.notice.Render(v.Notice) + "\n")
	}
	b.WriteString("\n")
	if v.Ended {
		b.WriteString(m.styles.title.Render("~ The End ~") + "\n")
	}
	for _, o := range v.Options {
		label := fmt.Sprintf("%d. %s", o.Index+1, o.Text)
		if o.Battle {
			label += " ⚔"
		}
		if o.Available {
			b.WriteString(m.styles.option.Render(label) + "\n")
		} else {
			b.WriteString(m.styles.locked.Render(label) + "\n")
		}
	}
	return b.String()
}

// chapterMarkdown lays a chapter out as markdown: heading, paragraphs, then
// dialogue as quotes.
func chapterMarkdown(v play.View) string {
	var b strings.Builder
	if v.Title != "" {
		b.WriteString("# " + v.Title + "\n\n")
	}
	for _, p := range v.Paragraphs {
		b.WriteString(p + "\n\n")
	}
	for _, d := range v.Dialogue {
		fmt.Fprintf(&b, "> **%s:** %s\n>\n", d.Speaker, d.Line)
	}
	return b.String()
}

func (m model) markdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

func (m model) combatView(v play.View) string {
	c := v.Combat
	var b strings.Builder
	b.WriteString(m.styles.title.Render(c.EnemyName) + "\n")
	b.WriteString(m.styles.muted.Render(c.EnemyDescription) + "\n\n")
	b.WriteString(m.bar("Enemy", c.EnemyHealth, c.EnemyMaxHealth, m.styles.barEnemy) + "\n")
	b.WriteString(m.bar("You  ", c.PlayerHealth, c.PlayerMaxHealth, m.styles.barFill) + "\n\n")

	log := c.Log
	if len(log) > 8 {
		log = log[len(log)-8:]
	}
	for _, line := range log {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
	if c.AwaitingEnemy {
		b.WriteString(m.styles.muted.Render("The enemy prepares to strike...") + "\n")
		return b.String()
	}
	b.WriteString(m.styles.option.Render("a. Attack   d. Defend") + "\n")
	for i, sk := range c.Skills {
		label := fmt.Sprintf("%d. %s (x%.1f)", i+1, sk.Name, sk.Multiplier)
		if sk.Affordable {
			b.WriteString(m.styles.option.Render(label) + "\n")
		} else {
			b.WriteString(m.styles.locked.Render(label) + "\n")
		}
	}
	return b.String()
}

func (m model) bar(label string, cur, maxVal int, fill lipgloss.Style) string {
	n := 0
	if maxVal > 0 {
		n = cur * barWidth / maxVal
	}
	return fmt.Sprintf("%s %s%s %d/%d", label,
		fill.Render(strings.Repeat("█", n)),
		m.styles.barEmpty.Render(strings.Repeat("░", barWidth-n)),
		cur, maxVal)
}

func (m model) sidebar(v play.View) string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Status") + "\n")
	for _, k := range v.Status.Keys() {
		if k == game.AttrInventory {
			continue
		}
		val, _ := v.Status.Get(k)
		fmt.Fprintf(&b, "%s: %s\n", strings.ReplaceAll(k, "_", " "), val)
	}
	if len(v.Inventory) > 0 {
		b.WriteString("\n" + m.styles.title.Render("Inventory") + "\n")
		for _, it := range v.Inventory {
			b.WriteString("• " + it + "\n")
		}
	}
	if v.MusicHint != "" {
		b.WriteString("\n" + m.styles.muted.Render("♪ "+v.MusicHint) + "\n")
	}
	return b.String()
}

func (m model) footer(v play.View) string {
	keys := "1-9 choose · r restart · s save · l load · q quit"
	if v.Combat != nil {
		keys = "a attack · d defend · 1-9 skill · q quit"
	}
	line := m.styles.muted.Render(keys)
	if m.status != "" {
		line = m.styles.notice.Render(m.status) + "  " + line
	}
	return line
}
