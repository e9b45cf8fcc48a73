package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StartID is the conventional id of the opening chapter.
const StartID = "start"

// LoadStory loads a story from a YAML or JSON (by extension) file and
// validates its graph.
func LoadStory(path string) (*Story, error) {
	// Resolve path to prevent directory traversal attacks
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and validated
	if err != nil {
		return nil, err
	}
	var s Story
	if strings.EqualFold(filepath.Ext(cleanPath), ".json") {
		err = json.Unmarshal(b, &s)
	} else {
		err = yaml.Unmarshal(b, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("parse story %s: %w", cleanPath, err)
	}
	if err := s.Validate(nil); err != nil {
		return nil, fmt.Errorf("story %s: %w", cleanPath, err)
	}
	return &s, nil
}

// NewStory builds a story from chapters in load order. Used by tests and
// callers assembling stories in code.
func NewStory(title, start string, chapters ...*Node) *Story {
	s := &Story{Title: title, Start: start, Chapters: chapters}
	s.reindex()
	return s
}

func (s *Story) reindex() {
	s.index = make(map[string]*Node, len(s.Chapters))
	for _, n := range s.Chapters {
		if n != nil {
			if _, dup := s.index[n.ID]; !dup {
				s.index[n.ID] = n
			}
		}
	}
}

// Node returns the chapter with id, or nil.
func (s *Story) Node(id string) *Node {
	if s == nil {
		return nil
	}
	if s.index == nil {
		s.reindex()
	}
	return s.index[id]
}

// StartNode resolves the opening chapter: the explicit start field, else a
// chapter with id "start", else the first chapter in load order.
func (s *Story) StartNode() *Node {
	if s == nil {
		return nil
	}
	if s.Start != "" {
		return s.Node(s.Start)
	}
	if n := s.Node(StartID); n != nil {
		return n
	}
	if len(s.Chapters) > 0 {
		return s.Chapters[0]
	}
	return nil
}

// Validate checks the graph: unique non-empty ids, a resolvable start, every
// option target and battle branch resolvable, and every option that starts a
// battle sitting on a chapter with a battle descriptor. When knownEnemy is
// non-nil, every referenced enemy archetype must exist too.
func (s *Story) Validate(knownEnemy func(id string) bool) error {
	if len(s.Chapters) == 0 {
		return errors.New("story has no chapters")
	}
	s.reindex()
	var errs []error
	seen := make(map[string]bool, len(s.Chapters))
	for i, n := range s.Chapters {
		if n == nil || n.ID == "" {
			errs = append(errs, fmt.Errorf("chapter #%d has no id", i))
			continue
		}
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("duplicate chapter id %q", n.ID))
		}
		seen[n.ID] = true
	}
	if s.StartNode() == nil {
		errs = append(errs, fmt.Errorf("start chapter %q not found", s.Start))
	}
	enemy := func(where, id string) {
		if knownEnemy != nil && id != "" && !knownEnemy(id) {
			errs = append(errs, fmt.Errorf("%s: unknown enemy %q", where, id))
		}
	}
	target := func(where, id string) {
		if id != "" && s.Node(id) == nil {
			errs = append(errs, fmt.Errorf("%s: unknown chapter %q", where, id))
		}
	}
	for _, n := range s.Chapters {
		if n == nil {
			continue
		}
		if n.Battle != nil {
			where := fmt.Sprintf("chapter %q battle", n.ID)
			if n.Battle.OnVictory == "" || n.Battle.OnDefeat == "" {
				errs = append(errs, fmt.Errorf("%s: victory and defeat targets are required", where))
			}
			target(where, n.Battle.OnVictory)
			target(where, n.Battle.OnDefeat)
			enemy(where, n.Battle.EnemyID)
		}
		check := func(where string, opts []Option) {
			for i, o := range opts {
				w := fmt.Sprintf("%s option %d", where, i)
				target(w, o.NextID)
				enemy(w, o.Battle)
				if o.Battle != "" && n.Battle == nil {
					errs = append(errs, fmt.Errorf("%s: starts a battle but the chapter has no battle branches", w))
				}
			}
		}
		check(fmt.Sprintf("chapter %q", n.ID), n.Options)
		for j, d := range n.Dialogue {
			check(fmt.Sprintf("chapter %q dialogue %d", n.ID, j), d.Options)
		}
	}
	return errors.Join(errs...)
}
