package game

import "strings"

// PlayerState is everything a playthrough carries between chapters: where
// the player is, their status record, and the trail of visited chapters.
type PlayerState struct {
	NodeID  string
	Status  Status
	Visited []string
}

// Story is the immutable chapter graph of one adventure.
type Story struct {
	Title     string  `yaml:"title" json:"title"`
	Start     string  `yaml:"start" json:"start"`
	Variables Status  `yaml:"variables" json:"variables"`
	Chapters  []*Node `yaml:"chapters" json:"chapters"`

	index map[string]*Node
}

// Node is a single chapter.
type Node struct {
	ID       string     `yaml:"id" json:"id"`
	Title    string     `yaml:"title" json:"title"`
	Text     string     `yaml:"text" json:"text"`
	Dialogue []Dialogue `yaml:"dialogue" json:"dialogue,omitempty"`
	Options  []Option   `yaml:"options" json:"options,omitempty"`
	Battle   *Battle    `yaml:"battle" json:"battle,omitempty"`
	Assets   Assets     `yaml:"assets" json:"assets"`
}

// Dialogue is one spoken line. The last line of a chapter may carry the
// chapter's option set.
type Dialogue struct {
	Speaker string   `yaml:"speaker" json:"speaker"`
	Line    string   `yaml:"line" json:"line"`
	Options []Option `yaml:"options" json:"options,omitempty"`
}

// Option is a player choice.
type Option struct {
	Text       string     `yaml:"text" json:"text"`
	NextID     string     `yaml:"nextId" json:"nextId,omitempty"`
	Effects    Effects    `yaml:"effects" json:"effects,omitempty"`
	Conditions Conditions `yaml:"conditions" json:"conditions,omitempty"`
	Battle     string     `yaml:"battle" json:"battle,omitempty"` // enemy archetype id
}

// Battle names the branches taken once an encounter started from this
// chapter ends.
type Battle struct {
	EnemyID   string `yaml:"enemy" json:"enemy"`
	OnVictory string `yaml:"victory" json:"victory"`
	OnDefeat  string `yaml:"defeat" json:"defeat"`
}

// Assets carries presentation hints.
type Assets struct {
	BGM     string `yaml:"bgm" json:"bgm,omitempty"`
	Scenery string `yaml:"scenery" json:"scenery,omitempty"`
}

// Paragraphs splits the chapter text on newlines, dropping blank lines.
func (n *Node) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(n.Text, "\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HasBattle reports whether any of the chapter's options starts combat.
func (n *Node) HasBattle() bool {
	for _, o := range ActiveOptions(n) {
		if o.Battle != "" {
			return true
		}
	}
	return false
}

// IsTerminal reports an ending: nothing to choose and no encounter pending.
func (n *Node) IsTerminal() bool {
	return len(ActiveOptions(n)) == 0 && n.Battle == nil
}

// ActiveOptions resolves which option list a chapter offers: the one attached
// to the final dialogue line if present, else the chapter's own options.
func ActiveOptions(n *Node) []Option {
	if n == nil {
		return nil
	}
	if len(n.Dialogue) > 0 {
		if last := n.Dialogue[len(n.Dialogue)-1]; len(last.Options) > 0 {
			return last.Options
		}
	}
	return n.Options
}
