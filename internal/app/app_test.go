package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xianxia/internal/config"
)

const storyYAML = `
title: Test Path
chapters:
  - id: start
    title: Gate
    text: A bandit waits.
    options:
      - text: Fight
        battle: bandit
    battle:
      enemy: bandit
      victory: start
      defeat: start
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func testConfig(storyPath string) *config.Config {
	cfg := &config.Config{}
	cfg.StoryPath = storyPath
	cfg.Backend = config.BackendMemory
	return cfg
}

func TestNew_Memory(t *testing.T) {
	a, err := New(context.Background(), testConfig(writeFile(t, "story.yaml", storyYAML)), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Equal(t, "Test Path", a.Story.Title)
	assert.Equal(t, "start", a.Play.State().NodeID)
	require.NotNil(t, a.Saves)

	// The opening chapter change is already counted.
	families, err := a.Registry.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "xianxia_engine_events_total" {
			found = true
		}
	}
	assert.True(t, found, "engine event counter registered")
}

func TestNew_UnknownEnemy(t *testing.T) {
	story := writeFile(t, "story.yaml", `
chapters:
  - id: start
    options:
      - text: Fight
        battle: dragon
    battle:
      enemy: dragon
      victory: start
      defeat: start
`)
	_, err := New(context.Background(), testConfig(story), zerolog.Nop())
	assert.ErrorContains(t, err, "dragon")
}

func TestNew_CustomCatalog(t *testing.T) {
	cfg := testConfig(writeFile(t, "story.yaml", storyYAML))
	cfg.CatalogPath = writeFile(t, "catalog.yaml", `
enemies:
  - id: wolf
    name: Wolf
    maxHealth: 10
    attack: 1
    defense: 0
skills: []
`)
	// The story's bandit is not in this catalog.
	_, err := New(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "bandit")

	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "load catalog")
}

func TestNew_MissingStory(t *testing.T) {
	_, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "nope.yaml")), zerolog.Nop())
	assert.ErrorContains(t, err, "load story")
}

func TestShippedStory(t *testing.T) {
	a, err := New(context.Background(), testConfig(filepath.Join("..", "..", "stories", "xianxia.yaml")), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	for _, n := range a.Story.Chapters {
		if n.Battle != nil {
			assert.True(t, a.Catalog.HasEnemy(n.Battle.EnemyID), n.ID)
		}
	}
	require.NoError(t, a.Play.Choose(0))
	assert.Equal(t, "sword_awakens", a.Play.State().NodeID)
	assert.Equal(t, []string{"Rusted Sword"}, a.Play.View().Inventory)
}
