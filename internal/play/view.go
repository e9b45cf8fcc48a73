package play

import (
	"xianxia/internal/game"
)

// View is everything a client renders for the current step. It carries no
// layout.
type View struct {
	ChapterID  string            `json:"chapterId"`
	Title      string            `json:"title"`
	Paragraphs []string          `json:"paragraphs"`
	Dialogue   []DialogueLine    `json:"dialogue,omitempty"`
	Options    []game.OptionView `json:"options"`
	Status     game.Status       `json:"status"`
	Inventory  []string          `json:"inventory"`
	MusicHint  string            `json:"musicHint,omitempty"`
	Scenery    string            `json:"scenery,omitempty"`
	Ended      bool              `json:"ended"`
	Notice     string            `json:"notice,omitempty"`
	Combat     *CombatView       `json:"combat,omitempty"`
	// Aftermath is the log of the encounter that just ended, shown until the
	// next choice.
	Aftermath []string `json:"aftermath,omitempty"`
}

type DialogueLine struct {
	Speaker string `json:"speaker"`
	Line    string `json:"line"`
}

// CombatView is the public side of an encounter.
type CombatView struct {
	EnemyID          string      `json:"enemyId"`
	EnemyName        string      `json:"enemyName"`
	EnemyDescription string      `json:"enemyDescription"`
	EnemyHealth      int         `json:"enemyHealth"`
	EnemyMaxHealth   int         `json:"enemyMaxHealth"`
	PlayerHealth     int         `json:"playerHealth"`
	PlayerMaxHealth  int         `json:"playerMaxHealth"`
	Defending        bool        `json:"defending"`
	AwaitingEnemy    bool        `json:"awaitingEnemy"`
	Turn             int         `json:"turn"`
	Log              []string    `json:"log"`
	Skills           []SkillView `json:"skills"`
}

type SkillView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Multiplier  float64 `json:"multiplier"`
	Affordable  bool    `json:"affordable"`
}

// View builds the current view. Options are listed only between encounters.
func (p *Playthrough) View() View {
	v := View{
		ChapterID: p.state.NodeID,
		Status:    p.state.Status.Clone(),
		Inventory: p.state.Status.Inventory(),
		Notice:    p.notice,
		Aftermath: p.aftermath,
	}
	if n := p.engine.Story.Node(p.state.NodeID); n != nil {
		v.Title = n.Title
		v.Paragraphs = n.Paragraphs()
		v.MusicHint = n.Assets.BGM
		v.Scenery = n.Assets.Scenery
		v.Ended = n.IsTerminal()
		for _, d := range n.Dialogue {
			v.Dialogue = append(v.Dialogue, DialogueLine{Speaker: d.Speaker, Line: d.Line})
		}
	}
	if p.battle == nil {
		v.Options = p.engine.Options(p.state)
		return v
	}

	s := p.battle
	status := s.Status()
	v.Status = status
	v.Inventory = status.Inventory()
	cv := &CombatView{
		EnemyID:          s.Enemy.ID,
		EnemyName:        s.Enemy.Name,
		EnemyDescription: s.Enemy.Description,
		EnemyHealth:      s.EnemyHealth,
		EnemyMaxHealth:   s.Enemy.MaxHealth,
		PlayerHealth:     s.PlayerHealth,
		PlayerMaxHealth:  s.PlayerMax,
		Defending:        s.Defending,
		AwaitingEnemy:    s.AwaitingEnemy(),
		Turn:             s.Turn,
		Log:              append([]string(nil), s.Log...),
	}
	for _, sk := range p.resolver.AvailableSkills(s) {
		cv.Skills = append(cv.Skills, SkillView{
			ID:          sk.ID,
			Name:        sk.Name,
			Description: sk.Description,
			Multiplier:  sk.DamageMultiplier,
			Affordable:  sk.Affordable(status) == "",
		})
	}
	v.Combat = cv
	return v
}
