package game

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"xianxia/internal/events"
)

// ErrDataIntegrity marks story data that references something that does not
// exist. It never ends a playthrough; the offending step is a no-op.
var ErrDataIntegrity = errors.New("data integrity")

// Verdict is the outcome of an encounter as seen by the story.
type Verdict int

const (
	Victory Verdict = iota + 1
	Defeat
)

func (v Verdict) String() string {
	switch v {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Engine walks the story graph. It holds no playthrough state; every call
// takes a PlayerState and returns the next one.
type Engine struct {
	Story    *Story
	Notifier events.Notifier
	Logger   zerolog.Logger
}

// StepResult is the outcome of one narrative step. ErrorMessage is the
// player-facing explanation when the step had no effect; Err carries the
// classified cause.
type StepResult struct {
	State        PlayerState
	Battle       string // enemy archetype id when the choice starts combat
	ErrorMessage string
	Err          error
}

// OptionView is an option as offered to the player.
type OptionView struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Available bool   `json:"available"`
	Battle    bool   `json:"battle"`
}

func NewEngine(story *Story, n events.Notifier, logger zerolog.Logger) *Engine {
	if n == nil {
		n = events.Nop
	}
	return &Engine{
		Story:    story,
		Notifier: n,
		Logger:   logger.With().Str("component", "narrative").Logger(),
	}
}

// NewPlayer starts at the story's opening chapter with the default status
// overlaid by the story's variables.
func (e *Engine) NewPlayer() (PlayerState, error) {
	start := e.Story.StartNode()
	if start == nil {
		return PlayerState{}, fmt.Errorf("%w: story has no start chapter", ErrDataIntegrity)
	}
	st := NewStatus()
	st.Merge(e.Story.Variables)
	return PlayerState{NodeID: start.ID, Status: st, Visited: []string{start.ID}}, nil
}

func (e *Engine) CurrentNode(st PlayerState) (*Node, error) {
	n := e.Story.Node(st.NodeID)
	if n == nil {
		return nil, fmt.Errorf("%w: unknown chapter %q", ErrDataIntegrity, st.NodeID)
	}
	return n, nil
}

// Options lists the current chapter's active options with their gate result.
func (e *Engine) Options(st PlayerState) []OptionView {
	n := e.Story.Node(st.NodeID)
	opts := ActiveOptions(n)
	out := make([]OptionView, 0, len(opts))
	for i, o := range opts {
		out = append(out, OptionView{
			Index:     i,
			Text:      o.Text,
			Available: IsAvailable(st.Status, o.Conditions),
			Battle:    o.Battle != "",
		})
	}
	return out
}

// SelectOption applies the option at index of the current chapter's active
// option set. A battle option leaves the chapter untouched and names the
// enemy in StepResult.Battle; the move happens later in ResolveBattle.
func (e *Engine) SelectOption(st PlayerState, index int) StepResult {
	node, err := e.CurrentNode(st)
	if err != nil {
		return e.integrity(st, err, "The current chapter is missing.")
	}
	opts := ActiveOptions(node)
	if index < 0 || index >= len(opts) {
		return StepResult{State: st, ErrorMessage: "That choice doesn't exist."}
	}
	opt := opts[index]

	// Options are gated again here; the list the player saw may be stale.
	if !IsAvailable(st.Status, opt.Conditions) {
		e.Logger.Info().Str("chapter", node.ID).Int("option", index).Msg("gated option rejected")
		return StepResult{State: st, ErrorMessage: "You are not yet able to choose that."}
	}

	e.Notifier.Notify(events.Event{Name: events.OptionSelected, ChapterID: node.ID, Amount: index, Detail: opt.Text})

	if opt.Battle != "" {
		return StepResult{State: st, Battle: opt.Battle}
	}

	// The target is resolved before effects so a broken link leaves the
	// status untouched too.
	var next *Node
	if opt.NextID != "" {
		if next = e.Story.Node(opt.NextID); next == nil {
			return e.integrity(st, fmt.Errorf("%w: chapter %q option %d targets unknown chapter %q",
				ErrDataIntegrity, node.ID, index, opt.NextID), "The path ahead is lost in mist.")
		}
	}

	st = e.ApplyEffects(st, opt.Effects)
	if next != nil {
		st = e.enter(st, next)
	}
	return StepResult{State: st}
}

// ResolveBattle follows the current chapter's victory or defeat branch.
func (e *Engine) ResolveBattle(st PlayerState, v Verdict) StepResult {
	node, err := e.CurrentNode(st)
	if err != nil {
		return e.integrity(st, err, "The current chapter is missing.")
	}
	if node.Battle == nil {
		return e.integrity(st, fmt.Errorf("%w: chapter %q has no battle branches", ErrDataIntegrity, node.ID),
			"The battle's aftermath is unwritten.")
	}
	target := node.Battle.OnDefeat
	if v == Victory {
		target = node.Battle.OnVictory
	}
	next := e.Story.Node(target)
	if next == nil {
		return e.integrity(st, fmt.Errorf("%w: chapter %q %s targets unknown chapter %q",
			ErrDataIntegrity, node.ID, v, target), "The battle's aftermath is unwritten.")
	}
	return StepResult{State: e.enter(st, next)}
}

// ApplyEffects merges effects into the status and signals every attribute
// the effects raised.
func (e *Engine) ApplyEffects(st PlayerState, effects Effects) PlayerState {
	if len(effects) == 0 {
		return st
	}
	st.Status = Apply(st.Status, effects)
	for _, attr := range effects.Increases() {
		e.Notifier.Notify(events.Event{Name: events.StatAttributeIncreased, Attr: attr, ChapterID: st.NodeID})
	}
	return st
}

// Jump moves straight to a chapter without applying any option. Used by
// save restore and remote chapter updates.
func (e *Engine) Jump(st PlayerState, id string) StepResult {
	next := e.Story.Node(id)
	if next == nil {
		return e.integrity(st, fmt.Errorf("%w: unknown chapter %q", ErrDataIntegrity, id), "That chapter does not exist.")
	}
	return StepResult{State: e.enter(st, next)}
}

func (e *Engine) enter(st PlayerState, next *Node) PlayerState {
	st.NodeID = next.ID
	st.Visited = append(append([]string(nil), st.Visited...), next.ID)
	e.Notifier.Notify(events.Event{Name: events.ChapterChanged, ChapterID: next.ID, MusicHint: next.Assets.BGM})
	return st
}

func (e *Engine) integrity(st PlayerState, err error, msg string) StepResult {
	e.Logger.Warn().Err(err).Str("chapter", st.NodeID).Msg("data integrity error")
	e.Notifier.Notify(events.Event{Name: events.DataIntegrity, ChapterID: st.NodeID, Detail: err.Error()})
	return StepResult{State: st, ErrorMessage: msg, Err: err}
}
