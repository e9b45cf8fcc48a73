// Package events carries the engine's side-channel signals (sound cues,
// analytics). Nothing in the engine depends on whether they are consumed.
package events

import (
	"time"
)

// Name identifies a signal.
type Name string

const (
	OptionSelected         Name = "optionSelected"
	StatAttributeIncreased Name = "statAttributeIncreased"
	CombatStarted          Name = "combatStarted"
	CombatHit              Name = "combatHit"
	CombatSkillUsed        Name = "combatSkillUsed"
	CombatVictory          Name = "combatVictory"
	CombatDefeat           Name = "combatDefeat"
	ChapterChanged         Name = "chapterChanged"
	DataIntegrity          Name = "dataIntegrity"
)

// Event is one emitted signal. Only the fields relevant to Name are set.
type Event struct {
	Name      Name      `json:"name"`
	At        time.Time `json:"at"`
	ChapterID string    `json:"chapterId,omitempty"`
	MusicHint string    `json:"musicHint,omitempty"`
	Attr      string    `json:"attr,omitempty"`
	EnemyID   string    `json:"enemyId,omitempty"`
	SkillID   string    `json:"skillId,omitempty"`
	Actor     string    `json:"actor,omitempty"` // "player" | "enemy"
	Amount    int       `json:"amount,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Notifier receives events. Implementations must not block the caller for
// long and must tolerate being called with any Name.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// Nop discards everything.
var Nop Notifier = NotifierFunc(func(Event) {})

// Fanout forwards every event to each notifier in order.
type Fanout []Notifier

func (f Fanout) Notify(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	for _, n := range f {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Recorder keeps events in memory; handy in tests and for the terminal
// client's status line.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Notify(e Event) { r.Events = append(r.Events, e) }

// Names returns the recorded event names in order.
func (r *Recorder) Names() []Name {
	out := make([]Name, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Name)
	}
	return out
}

// Count returns how many events named n were recorded.
func (r *Recorder) Count(n Name) int {
	c := 0
	for _, e := range r.Events {
		if e.Name == n {
			c++
		}
	}
	return c
}
