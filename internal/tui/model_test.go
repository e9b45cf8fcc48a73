package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xianxia/internal/combat"
	"xianxia/internal/game"
	"xianxia/internal/play"
	"xianxia/internal/session"
)

func testModel(t *testing.T) model {
	t.Helper()
	story := game.NewStory("Test", "",
		&game.Node{
			ID:    "start",
			Title: "Sect Gate",
			Text:  "A bandit bars the way.",
			Dialogue: []game.Dialogue{{Speaker: "Bandit", Line: "Halt!"}},
			Options: []game.Option{
				{Text: "Fight", Battle: "bandit"},
				{Text: "Slip past", NextID: "hall"},
				{Text: "Elder path", NextID: "hall", Conditions: game.Conditions{game.AttrCultivation: 50}},
			},
			Battle: &game.Battle{EnemyID: "bandit", OnVictory: "hall", OnDefeat: "start"},
			Assets: game.Assets{BGM: "gate"},
		},
		&game.Node{ID: "hall", Title: "Hall", Text: "Incense."},
	)
	engine := game.NewEngine(story, nil, zerolog.Nop())
	resolver := combat.NewResolver(combat.DefaultCatalog(), nil, zerolog.Nop())
	p, err := play.New(engine, resolver, zerolog.Nop())
	require.NoError(t, err)

	m := newModel(context.Background(), p, session.NewMemoryStore[play.SaveData]())
	m.renderer = nil
	m.delay = 0
	return m
}

func press(t *testing.T, m model, k string) (model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func TestDigit(t *testing.T) {
	idx, ok := digit("1")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	idx, ok = digit("9")
	assert.True(t, ok)
	assert.Equal(t, 8, idx)
	for _, k := range []string{"0", "a", "10", ""} {
		_, ok := digit(k)
		assert.False(t, ok, k)
	}
}

func TestChooseByNumber(t *testing.T) {
	m := testModel(t)
	m, cmd := press(t, m, "2")
	assert.Nil(t, cmd)
	assert.Equal(t, "hall", m.play.State().NodeID)
}

func TestLockedOptionLeavesNotice(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, "3")
	assert.Equal(t, "start", m.play.State().NodeID)
	assert.NotEmpty(t, m.play.View().Notice)
}

func TestCombatPacesEnemyTurn(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, "1")
	require.True(t, m.play.InCombat())

	m, cmd := press(t, m, "a")
	require.NotNil(t, cmd, "an attack that leaves the enemy standing schedules its reply")
	assert.True(t, m.play.AwaitingEnemy())

	// Input is ignored until the enemy has answered.
	m, again := press(t, m, "a")
	assert.Nil(t, again)
	assert.Equal(t, 47, m.play.View().Combat.EnemyHealth)

	next, _ := m.Update(cmd())
	m = next.(model)
	assert.False(t, m.play.AwaitingEnemy())
	c := m.play.View().Combat
	require.NotNil(t, c)
	assert.Equal(t, c.PlayerMaxHealth-5, c.PlayerHealth)
}

func TestCombatSkillKeys(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, "1")

	// Only basic sword art is unlocked at cultivation 0.
	m, cmd := press(t, m, "2")
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.play.View().Combat.Turn)

	m, cmd = press(t, m, "1")
	require.NotNil(t, cmd)
	v := m.play.View()
	assert.Equal(t, 1, v.Combat.Turn)
	assert.Equal(t, 95.0, v.Status.Num(game.AttrSpirit))
}

func TestQuickSaveLoad(t *testing.T) {
	m := testModel(t)
	m, _ = press(t, m, "l")
	assert.Equal(t, "No saved game.", m.status)

	m, _ = press(t, m, "2")
	m, _ = press(t, m, "s")
	assert.Equal(t, "Saved.", m.status)

	m, _ = press(t, m, "r")
	assert.Equal(t, "start", m.play.State().NodeID)

	m, _ = press(t, m, "l")
	assert.Equal(t, "Loaded.", m.status)
	assert.Equal(t, "hall", m.play.State().NodeID)
}

func TestQuit(t *testing.T) {
	m := testModel(t)
	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := press(t, m, k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, k)
	}
}

func TestView(t *testing.T) {
	m := testModel(t)
	out := m.View()
	assert.Contains(t, out, "Sect Gate")
	assert.Contains(t, out, "Bandit")
	assert.Contains(t, out, "Slip past")
	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "gate")

	m, _ = press(t, m, "1")
	out = m.View()
	assert.Contains(t, out, "Bandit")
	assert.Contains(t, out, "a. Attack")
	assert.True(t, strings.Contains(out, "50/50"), "enemy health bar")
}

func TestChapterMarkdown(t *testing.T) {
	md := chapterMarkdown(play.View{
		Title:      "Gate",
		Paragraphs: []string{"One.", "Two."},
		Dialogue:   []play.DialogueLine{{Speaker: "Elder", Line: "Kneel."}},
	})
	assert.Equal(t, "# Gate\n\nOne.\n\nTwo.\n\n> **Elder:** Kneel.\n>\n", md)
}
