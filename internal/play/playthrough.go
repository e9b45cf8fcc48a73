// Package play drives a single playthrough: it moves the player's status
// between the narrative engine and the combat resolver and exposes what a
// client needs to render each step.
package play

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"xianxia/internal/combat"
	"xianxia/internal/events"
	"xianxia/internal/game"
)

var (
	ErrInCombat    = errors.New("an encounter is in progress")
	ErrNotInCombat = errors.New("no encounter in progress")
)

// SaveData is the persisted shape of a playthrough. Encounters are never
// part of it; a restored game always resumes between chapters.
type SaveData struct {
	CurrentNodeID string      `json:"currentNodeId"`
	Status        game.Status `json:"status"`
}

// Playthrough is not safe for concurrent use; transports serialise calls.
type Playthrough struct {
	engine   *game.Engine
	resolver *combat.Resolver
	logger   zerolog.Logger

	state  game.PlayerState
	battle *combat.Session

	notice    string
	aftermath []string
}

func New(engine *game.Engine, resolver *combat.Resolver, logger zerolog.Logger) (*Playthrough, error) {
	p := &Playthrough{
		engine:   engine,
		resolver: resolver,
		logger:   logger.With().Str("component", "playthrough").Logger(),
	}
	if err := p.Reset(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset starts over from the opening chapter with a fresh status.
func (p *Playthrough) Reset() error {
	st, err := p.engine.NewPlayer()
	if err != nil {
		return err
	}
	p.state = st
	p.battle = nil
	p.notice = ""
	p.aftermath = nil
	if n := p.engine.Story.Node(st.NodeID); n != nil {
		p.engine.Notifier.Notify(events.Event{Name: events.ChapterChanged, ChapterID: n.ID, MusicHint: n.Assets.BGM})
	}
	return nil
}

// State returns the narrative-level state. During an encounter its status
// is the one the encounter started with.
func (p *Playthrough) State() game.PlayerState { return p.state }

func (p *Playthrough) InCombat() bool { return p.battle != nil }

func (p *Playthrough) Story() *game.Story { return p.engine.Story }

// Choose selects an option of the current chapter. A rejected or broken
// selection is not an error for the caller; the reason shows up in the
// view's notice.
func (p *Playthrough) Choose(index int) error {
	if p.battle != nil {
		return ErrInCombat
	}
	p.aftermath = nil
	res := p.engine.SelectOption(p.state, index)
	p.state = res.State
	p.notice = res.ErrorMessage
	if res.Battle == "" {
		return nil
	}

	sess, err := p.resolver.Start(res.Battle, p.state.Status)
	if err != nil {
		p.notice = "Your foe has vanished into the mist."
		return nil
	}
	p.battle = sess
	p.logger.Debug().Str("enemy", res.Battle).Str("chapter", p.state.NodeID).Msg("status handed to encounter")
	if sess.Done() {
		p.finish()
	}
	return nil
}

// Attack, Defend and UseSkill run the player's half of a combat turn. The
// caller then runs EnemyTurn, right away or after a presentation pause.
func (p *Playthrough) Attack() error {
	return p.act(func(s *combat.Session) error { return p.resolver.Attack(s) })
}

func (p *Playthrough) Defend() error {
	return p.act(func(s *combat.Session) error { return p.resolver.Defend(s) })
}

func (p *Playthrough) UseSkill(id string) error {
	return p.act(func(s *combat.Session) error { return p.resolver.UseSkill(s, id) })
}

// EnemyTurn resolves the pending enemy strike.
func (p *Playthrough) EnemyTurn() error {
	return p.act(p.resolver.ResolveEnemyTurn)
}

// AwaitingEnemy reports whether EnemyTurn must run before more input.
func (p *Playthrough) AwaitingEnemy() bool {
	return p.battle != nil && p.battle.AwaitingEnemy()
}

func (p *Playthrough) act(fn func(*combat.Session) error) error {
	if p.battle == nil {
		return ErrNotInCombat
	}
	if err := fn(p.battle); err != nil {
		return err
	}
	if p.battle.Done() {
		p.finish()
	}
	return nil
}

func (p *Playthrough) finish() {
	status, verdict, err := p.resolver.Finish(p.battle)
	if err != nil {
		p.logger.Error().Err(err).Msg("finish encounter")
		return
	}
	p.aftermath = append([]string(nil), p.battle.Log...)
	p.battle = nil
	p.state.Status = status

	res := p.engine.ResolveBattle(p.state, verdict)
	p.state = res.State
	p.notice = res.ErrorMessage
	p.logger.Debug().Stringer("verdict", verdict).Str("chapter", p.state.NodeID).Msg("status returned to story")
}

// Snapshot captures what a save slot stores.
func (p *Playthrough) Snapshot() SaveData {
	return SaveData{CurrentNodeID: p.state.NodeID, Status: p.state.Status.Clone()}
}

// Restore replaces the playthrough with a saved one, dropping any encounter
// in progress. The current state is kept if the saved chapter is unknown.
func (p *Playthrough) Restore(data SaveData) error {
	// Older saves may predate attributes the story's opening record carries.
	status := game.NewStatus()
	status.Merge(p.engine.Story.Variables)
	status.Merge(data.Status)
	fresh := game.PlayerState{Status: status}
	res := p.engine.Jump(fresh, data.CurrentNodeID)
	if res.Err != nil {
		return fmt.Errorf("restore: %w", res.Err)
	}
	p.state = res.State
	p.battle = nil
	p.notice = ""
	p.aftermath = nil
	return nil
}
