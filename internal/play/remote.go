package play

import (
	"encoding/json"
	"errors"
	"fmt"

	"xianxia/internal/game"
)

// Remote message types.
const (
	ChapterUpdate = "chapter_update"
	PlayerUpdate  = "player_update"
)

var ErrMalformedMessage = errors.New("malformed remote message")

// RemoteMessage is a state push from an external collaborator.
type RemoteMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type chapterPayload struct {
	ChapterID string `json:"chapterId"`
}

type playerPayload struct {
	Effects game.Effects `json:"effects"`
}

// ParseRemote decodes a raw remote message.
func ParseRemote(data []byte) (RemoteMessage, error) {
	var m RemoteMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return RemoteMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return m, nil
}

// ApplyRemote applies a pushed message with the same rules as a local step.
// Malformed or unresolvable messages, and anything arriving during an
// encounter, are dropped: the error says why and state is unchanged.
func (p *Playthrough) ApplyRemote(m RemoteMessage) error {
	err := p.applyRemote(m)
	if err != nil {
		p.logger.Warn().Err(err).Str("type", m.Type).Msg("remote message dropped")
	}
	return err
}

func (p *Playthrough) applyRemote(m RemoteMessage) error {
	if p.battle != nil {
		return ErrInCombat
	}
	switch m.Type {
	case ChapterUpdate:
		var pl chapterPayload
		if err := json.Unmarshal(m.Payload, &pl); err != nil || pl.ChapterID == "" {
			return fmt.Errorf("%w: chapter_update needs payload.chapterId", ErrMalformedMessage)
		}
		res := p.engine.Jump(p.state, pl.ChapterID)
		if res.Err != nil {
			return res.Err
		}
		p.state = res.State
		p.aftermath = nil
		p.notice = ""
	case PlayerUpdate:
		var pl playerPayload
		if err := json.Unmarshal(m.Payload, &pl); err != nil || len(pl.Effects) == 0 {
			return fmt.Errorf("%w: player_update needs payload.effects", ErrMalformedMessage)
		}
		p.state = p.engine.ApplyEffects(p.state, pl.Effects)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, m.Type)
	}
	return nil
}
