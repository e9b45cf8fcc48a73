// Package combat runs turn-based encounters between the player and an enemy
// archetype drawn from a read-only catalog.
package combat

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"xianxia/internal/game"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Archetype is an enemy template. Sessions copy it; the catalog entry is
// never modified.
type Archetype struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description" json:"description"`
	MaxHealth   int          `yaml:"maxHealth" json:"maxHealth"`
	Attack      int          `yaml:"attack" json:"attack"`
	Defense     int          `yaml:"defense" json:"defense"`
	Rewards     game.Effects `yaml:"rewards" json:"rewards,omitempty"`
}

// Skill is a technique the player may use once their cultivation reaches
// Unlock. Cost entries are magnitudes; they are subtracted when the skill
// fires.
type Skill struct {
	ID               string       `yaml:"id" json:"id"`
	Name             string       `yaml:"name" json:"name"`
	Description      string       `yaml:"description" json:"description"`
	DamageMultiplier float64      `yaml:"damageMultiplier" json:"damageMultiplier"`
	Cost             game.Effects `yaml:"cost" json:"cost,omitempty"`
	Unlock           float64      `yaml:"unlock" json:"unlock"`
}

// Unlocked reports whether status meets the skill's cultivation threshold.
func (s Skill) Unlocked(status game.Status) bool {
	return status.Num(game.AttrCultivation) >= s.Unlock
}

// Affordable returns the first cost attribute status cannot pay, or "" when
// every cost is covered.
func (s Skill) Affordable(status game.Status) string {
	for _, c := range s.Cost {
		n, ok := c.Value.Num()
		if !ok {
			continue
		}
		if status.Num(c.Attr) < n {
			return c.Attr
		}
	}
	return ""
}

// Catalog holds every enemy archetype and skill, in file order.
type Catalog struct {
	Enemies []Archetype `yaml:"enemies" json:"enemies"`
	Skills  []Skill     `yaml:"skills" json:"skills"`
}

// DefaultCatalog returns the built-in enemies and techniques.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("combat: built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cleanPath, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects duplicate or empty ids and archetypes that could never be
// defeated or never fight back.
func (c *Catalog) Validate() error {
	var errs []error
	seen := map[string]bool{}
	for i, e := range c.Enemies {
		switch {
		case e.ID == "":
			errs = append(errs, fmt.Errorf("enemy #%d has no id", i))
		case seen[e.ID]:
			errs = append(errs, fmt.Errorf("duplicate enemy id %q", e.ID))
		}
		seen[e.ID] = true
		if e.MaxHealth <= 0 {
			errs = append(errs, fmt.Errorf("enemy %q: maxHealth must be positive", e.ID))
		}
		if e.Attack < 0 || e.Defense < 0 {
			errs = append(errs, fmt.Errorf("enemy %q: attack and defense must not be negative", e.ID))
		}
	}
	seen = map[string]bool{}
	for i, s := range c.Skills {
		switch {
		case s.ID == "":
			errs = append(errs, fmt.Errorf("skill #%d has no id", i))
		case seen[s.ID]:
			errs = append(errs, fmt.Errorf("duplicate skill id %q", s.ID))
		}
		seen[s.ID] = true
		if s.DamageMultiplier <= 0 {
			errs = append(errs, fmt.Errorf("skill %q: damageMultiplier must be positive", s.ID))
		}
	}
	return errors.Join(errs...)
}

// Enemy looks up an archetype by id.
func (c *Catalog) Enemy(id string) (Archetype, bool) {
	for _, e := range c.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return Archetype{}, false
}

// HasEnemy is shaped for game.Story.Validate.
func (c *Catalog) HasEnemy(id string) bool {
	_, ok := c.Enemy(id)
	return ok
}

func (c *Catalog) Skill(id string) (Skill, bool) {
	for _, s := range c.Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

// Available lists the skills status has unlocked, in catalog order. It is
// computed from status on every call.
func (c *Catalog) Available(status game.Status) []Skill {
	var out []Skill
	for _, s := range c.Skills {
		if s.Unlocked(status) {
			out = append(out, s)
		}
	}
	return out
}
