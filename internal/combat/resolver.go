package combat

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"xianxia/internal/events"
	"xianxia/internal/game"
)

var (
	// ErrAwaitingEnemy rejects player input while the enemy turn is pending.
	ErrAwaitingEnemy = errors.New("waiting for the enemy to act")
	// ErrInsufficientResource rejects a skill whose cost exceeds the status.
	ErrInsufficientResource = errors.New("insufficient resource")
	ErrSkillLocked          = errors.New("skill not unlocked")
	ErrUnknownSkill         = errors.New("unknown skill")
	ErrNotAwaiting          = errors.New("no enemy turn pending")
	ErrSessionOver          = errors.New("encounter already finished")
	ErrSessionOngoing       = errors.New("encounter still in progress")
)

// Resolver applies combat rules to sessions. It is stateless apart from the
// catalog and can be shared.
type Resolver struct {
	Catalog  *Catalog
	Notifier events.Notifier
	Logger   zerolog.Logger
}

func NewResolver(cat *Catalog, n events.Notifier, logger zerolog.Logger) *Resolver {
	if n == nil {
		n = events.Nop
	}
	return &Resolver{
		Catalog:  cat,
		Notifier: n,
		Logger:   logger.With().Str("component", "combat").Logger(),
	}
}

// Start opens an encounter with the named archetype. An unknown id is a
// data integrity error. A player who arrives with no health loses at once.
func (r *Resolver) Start(enemyID string, status game.Status) (*Session, error) {
	enemy, ok := r.Catalog.Enemy(enemyID)
	if !ok {
		err := fmt.Errorf("%w: unknown enemy %q", game.ErrDataIntegrity, enemyID)
		r.Logger.Warn().Err(err).Msg("cannot start encounter")
		return nil, err
	}
	s := newSession(enemy, status)
	s.logLine(fmt.Sprintf("You encounter the %s!", enemy.Name))
	r.Notifier.Notify(events.Event{Name: events.CombatStarted, EnemyID: enemy.ID})
	r.Logger.Debug().Str("enemy", enemy.ID).Int("player_health", s.PlayerHealth).Msg("encounter started")
	if s.PlayerHealth == 0 {
		r.lose(s)
	}
	return s, nil
}

// AvailableSkills recomputes the unlocked skills from the session's status.
func (r *Resolver) AvailableSkills(s *Session) []Skill {
	return r.Catalog.Available(s.status)
}

func (r *Resolver) ready(s *Session) error {
	if s.Done() {
		return ErrSessionOver
	}
	if s.awaitingEnemy {
		return ErrAwaitingEnemy
	}
	return nil
}

// Attack deals max(1, base - defense) to the enemy.
func (r *Resolver) Attack(s *Session) error {
	if err := r.ready(s); err != nil {
		return err
	}
	dmg := max(1, s.baseDamage()-s.Enemy.Defense)
	s.hitEnemy(dmg)
	s.logLine(fmt.Sprintf("You strike the %s for %d damage!", s.Enemy.Name, dmg))
	r.Notifier.Notify(events.Event{Name: events.CombatHit, EnemyID: s.Enemy.ID, Actor: "player", Amount: dmg})
	r.endPlayerTurn(s)
	return nil
}

// Defend halves the next enemy hit.
func (r *Resolver) Defend(s *Session) error {
	if err := r.ready(s); err != nil {
		return err
	}
	s.Defending = true
	s.logLine("You take a defensive stance and brace for the attack.")
	r.endPlayerTurn(s)
	return nil
}

// UseSkill fires a technique. A locked, unknown or unaffordable skill adds
// one log line and changes nothing else; no turn is spent.
func (r *Resolver) UseSkill(s *Session, skillID string) error {
	if err := r.ready(s); err != nil {
		return err
	}
	skill, ok := r.Catalog.Skill(skillID)
	if !ok {
		s.logLine("You do not know that technique.")
		return fmt.Errorf("%w: %q", ErrUnknownSkill, skillID)
	}
	if !skill.Unlocked(s.status) {
		s.logLine(fmt.Sprintf("%s is beyond your cultivation.", skill.Name))
		return fmt.Errorf("%w: %q", ErrSkillLocked, skillID)
	}
	if attr := skill.Affordable(s.status); attr != "" {
		s.logLine(fmt.Sprintf("Not enough %s to use %s!", attrLabel(attr), skill.Name))
		r.Logger.Debug().Str("skill", skill.ID).Str("attr", attr).Msg("skill rejected")
		return fmt.Errorf("%w: %s for %q", ErrInsufficientResource, attr, skillID)
	}

	base := s.baseDamage()
	s.status = game.Apply(s.status, skill.Cost.Negate())
	dmg := max(1, int(math.Floor(float64(base-s.Enemy.Defense)*skill.DamageMultiplier)))
	s.hitEnemy(dmg)
	s.logLine(fmt.Sprintf("You use %s on the %s for %d damage!", skill.Name, s.Enemy.Name, dmg))
	r.Notifier.Notify(events.Event{Name: events.CombatSkillUsed, EnemyID: s.Enemy.ID, SkillID: skill.ID, Actor: "player", Amount: dmg})
	r.endPlayerTurn(s)
	return nil
}

func (r *Resolver) endPlayerTurn(s *Session) {
	s.Turn++
	if s.EnemyHealth == 0 {
		r.win(s)
		return
	}
	s.awaitingEnemy = true
}

// ResolveEnemyTurn runs the enemy's strike that follows every player action
// which left the enemy standing.
func (r *Resolver) ResolveEnemyTurn(s *Session) error {
	if s.Done() {
		return ErrSessionOver
	}
	if !s.awaitingEnemy {
		return ErrNotAwaiting
	}
	dmg := s.Enemy.Attack
	if s.Defending {
		dmg = max(1, dmg/2)
	}
	s.hitPlayer(dmg)
	s.Defending = false
	s.awaitingEnemy = false
	s.logLine(fmt.Sprintf("The %s hits you for %d damage!", s.Enemy.Name, dmg))
	r.Notifier.Notify(events.Event{Name: events.CombatHit, EnemyID: s.Enemy.ID, Actor: "enemy", Amount: dmg})

	// The enemy only acts while alive, so victory is checked first.
	switch {
	case s.EnemyHealth == 0:
		r.win(s)
	case s.PlayerHealth == 0:
		r.lose(s)
	}
	return nil
}

func (r *Resolver) win(s *Session) {
	s.Outcome = Victory
	s.awaitingEnemy = false
	s.logLine(fmt.Sprintf("You defeated the %s!", s.Enemy.Name))
	if !s.rewarded {
		s.rewarded = true
		if len(s.Enemy.Rewards) > 0 {
			s.status = game.Apply(s.status, s.Enemy.Rewards)
			s.logLine("Rewards: " + rewardSummary(s.Enemy.Rewards))
			for _, attr := range s.Enemy.Rewards.Increases() {
				r.Notifier.Notify(events.Event{Name: events.StatAttributeIncreased, Attr: attr, EnemyID: s.Enemy.ID})
			}
		}
	}
	r.Notifier.Notify(events.Event{Name: events.CombatVictory, EnemyID: s.Enemy.ID, Amount: s.Turn})
	r.Logger.Info().Str("enemy", s.Enemy.ID).Int("turns", s.Turn).Msg("encounter won")
}

func (r *Resolver) lose(s *Session) {
	s.Outcome = Defeat
	s.logLine(fmt.Sprintf("You were defeated by the %s...", s.Enemy.Name))
	r.Notifier.Notify(events.Event{Name: events.CombatDefeat, EnemyID: s.Enemy.ID, Amount: s.Turn})
	r.Logger.Info().Str("enemy", s.Enemy.ID).Int("turns", s.Turn).Msg("encounter lost")
}

// Finish hands the status record back once the encounter is over, along with
// the verdict the story should branch on.
func (r *Resolver) Finish(s *Session) (game.Status, game.Verdict, error) {
	if !s.Done() {
		return game.Status{}, 0, ErrSessionOngoing
	}
	return s.status.Clone(), s.Outcome.Verdict(), nil
}

func rewardSummary(effs game.Effects) string {
	parts := make([]string, 0, len(effs))
	for _, e := range effs {
		v := e.Value.String()
		if n, ok := e.Value.Num(); ok {
			v = strconv.FormatFloat(n, 'f', -1, 64)
			if n > 0 {
				v = "+" + v
			}
		}
		parts = append(parts, attrLabel(e.Attr)+" "+v)
	}
	return strings.Join(parts, ", ")
}

func attrLabel(attr string) string {
	return strings.ReplaceAll(attr, "_", " ")
}
