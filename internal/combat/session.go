package combat

import (
	"math"

	"xianxia/internal/game"
)

// Outcome is the state of an encounter.
type Outcome int

const (
	Ongoing Outcome = iota
	Victory
	Defeat
)

func (o Outcome) String() string {
	switch o {
	case Ongoing:
		return "ongoing"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Verdict converts a finished outcome into what the story branches on.
func (o Outcome) Verdict() game.Verdict {
	if o == Victory {
		return game.Victory
	}
	return game.Defeat
}

// Session is one live encounter. It owns the player's status record until
// Finish hands it back, and is never persisted.
type Session struct {
	Enemy        Archetype
	EnemyHealth  int
	PlayerHealth int
	PlayerMax    int
	Turn         int
	Defending    bool
	Log          []string
	Outcome      Outcome

	status        game.Status
	awaitingEnemy bool
	rewarded      bool
}

func newSession(enemy Archetype, status game.Status) *Session {
	hp := int(math.Floor(status.Num(game.AttrStamina) * 2))
	return &Session{
		Enemy:        enemy,
		EnemyHealth:  enemy.MaxHealth,
		PlayerHealth: hp,
		PlayerMax:    hp,
		status:       status.Clone(),
	}
}

// Status returns a copy of the status record as it stands in the session.
func (s *Session) Status() game.Status { return s.status.Clone() }

// AwaitingEnemy reports whether player input is locked until the enemy's
// turn resolves.
func (s *Session) AwaitingEnemy() bool { return s.awaitingEnemy }

func (s *Session) Done() bool { return s.Outcome != Ongoing }

func (s *Session) logLine(line string) { s.Log = append(s.Log, line) }

// baseDamage is 5 plus one per full 20 cultivation.
func (s *Session) baseDamage() int {
	return 5 + int(math.Floor(s.status.Num(game.AttrCultivation)/20))
}

func (s *Session) hitEnemy(dmg int) {
	s.EnemyHealth -= dmg
	if s.EnemyHealth < 0 {
		s.EnemyHealth = 0
	}
}

func (s *Session) hitPlayer(dmg int) {
	s.PlayerHealth -= dmg
	if s.PlayerHealth < 0 {
		s.PlayerHealth = 0
	}
}
