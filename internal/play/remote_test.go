package play

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xianxia/internal/events"
	"xianxia/internal/game"
)

func TestApplyRemote_ChapterUpdate(t *testing.T) {
	p, rec := newPlaythrough(t)
	m, err := ParseRemote([]byte(`{"type":"chapter_update","payload":{"chapterId":"grove"}}`))
	require.NoError(t, err)

	require.NoError(t, p.ApplyRemote(m))
	assert.Equal(t, "grove", p.State().NodeID)
	assert.Equal(t, 2, rec.Count(events.ChapterChanged))
}

func TestApplyRemote_PlayerUpdate(t *testing.T) {
	p, rec := newPlaythrough(t)
	m, err := ParseRemote([]byte(`{"type":"player_update","payload":{"effects":{"cultivation":12,"item":"spirit stone","spirit":50}}}`))
	require.NoError(t, err)

	require.NoError(t, p.ApplyRemote(m))
	st := p.State().Status
	assert.Equal(t, 12.0, st.Num(game.AttrCultivation))
	assert.Equal(t, 100.0, st.Num(game.AttrSpirit))
	assert.Equal(t, []string{"spirit stone"}, st.Inventory())
	assert.Equal(t, 2, rec.Count(events.StatAttributeIncreased))
}

func TestApplyRemote_DropsBadMessages(t *testing.T) {
	p, _ := newPlaythrough(t)
	before := p.Snapshot()

	cases := []string{
		`{"type":"chapter_update","payload":{}}`,
		`{"type":"chapter_update"}`,
		`{"type":"player_update","payload":{"effects":{}}}`,
		`{"type":"weather_update","payload":{}}`,
	}
	for _, raw := range cases {
		m, err := ParseRemote([]byte(raw))
		require.NoError(t, err, raw)
		assert.ErrorIs(t, p.ApplyRemote(m), ErrMalformedMessage, raw)
	}

	m, _ := ParseRemote([]byte(`{"type":"chapter_update","payload":{"chapterId":"atlantis"}}`))
	assert.ErrorIs(t, p.ApplyRemote(m), game.ErrDataIntegrity)

	_, err := ParseRemote([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedMessage)

	after := p.Snapshot()
	assert.Equal(t, before.CurrentNodeID, after.CurrentNodeID)
	assert.True(t, before.Status.Equal(after.Status))
}

func TestApplyRemote_DroppedDuringCombat(t *testing.T) {
	p, _ := newPlaythrough(t)
	require.NoError(t, p.Choose(0))

	m, _ := ParseRemote([]byte(`{"type":"chapter_update","payload":{"chapterId":"grove"}}`))
	assert.ErrorIs(t, p.ApplyRemote(m), ErrInCombat)
	assert.True(t, p.InCombat())
}
