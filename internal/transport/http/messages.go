package http

import (
	"encoding/json"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/event"
	"millionaire-service/internal/game"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type actionPayload struct {
	Answer   string          `json:"answer"`
	Lifeline domain.Lifeline `json:"lifeline"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type statePayload struct {
	game.Snapshot
	Applied bool `json:"applied"`
}

type questionPayload struct {
	Level            int                   `json:"level"`
	Amount           int                   `json:"amount"`
	Safe             bool                  `json:"safe"`
	Question         domain.PublicQuestion `json:"question"`
	Fallback         bool                  `json:"fallback,omitempty"`
	RemainingSeconds int                   `json:"remainingSeconds"`
}

type lockedPayload struct {
	Level            int    `json:"level"`
	Answer           string `json:"answer"`
	RemainingSeconds int    `json:"remainingSeconds"`
}

type resolvedPayload struct {
	Level         int    `json:"level"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation,omitempty"`
	TimedOut      bool   `json:"timedOut,omitempty"`
}

type lifelinePayload struct {
	Kind       domain.Lifeline `json:"kind"`
	Eliminated []string        `json:"eliminated,omitempty"`
	Hint       string          `json:"hint,omitempty"`
}

type hostPayload struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// outbound translates a game event into the message sent to the client. ok is false for events
// the client only learns about through the next state message.
func outbound(e event.Event) (outboundMessage, bool) {
	switch ev := e.(type) {
	case domain.EventQuestionLoaded:
		return outboundMessage{Type: "questionLoaded", Payload: questionPayload{
			Level:            ev.Level,
			Amount:           ev.Amount,
			Safe:             ev.Safe,
			Question:         ev.Question.Public(),
			Fallback:         ev.Fallback,
			RemainingSeconds: int(ev.TimeLimit.Seconds()),
		}}, true
	case domain.EventAnswerLocked:
		return outboundMessage{Type: "answerLocked", Payload: lockedPayload{
			Level:            ev.Level,
			Answer:           ev.Answer,
			RemainingSeconds: int(ev.Remaining.Seconds()),
		}}, true
	case domain.EventResolved:
		return outboundMessage{Type: "resolved", Payload: resolvedPayload{
			Level:         ev.Level,
			Correct:       ev.Correct,
			CorrectAnswer: ev.CorrectAnswer,
			Explanation:   ev.Explanation,
			TimedOut:      ev.Result.TimedOut,
		}}, true
	case domain.EventLifelineUsed:
		return outboundMessage{Type: "lifeline", Payload: lifelinePayload{Kind: ev.Kind, Eliminated: ev.Eliminated, Hint: ev.Hint}}, true
	case domain.EventAudienceRevealed:
		return outboundMessage{Type: "audience", Payload: ev.Poll}, true
	case domain.EventTimeUp:
		return outboundMessage{Type: "timeUp", Payload: map[string]int{"level": ev.Level}}, true
	case domain.EventWalkAway:
		return outboundMessage{Type: "walkAway", Payload: map[string]int{"level": ev.Level, "amount": ev.Amount}}, true
	case domain.EventGameEnded:
		return outboundMessage{Type: "gameOver", Payload: ev.Record}, true
	case domain.EventHostLine:
		return outboundMessage{Type: "host", Payload: hostPayload{Kind: ev.Kind, Text: ev.Text}}, true
	case domain.EventHostAudio:
		return outboundMessage{Type: "host", Payload: hostPayload{Kind: ev.Kind, Text: ev.Text, AudioURL: ev.AudioURL}}, true
	}
	return outboundMessage{}, false
}

func actionFrom(msg inboundMessage) (game.Action, error) {
	var payload actionPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return game.Action{}, err
		}
	}
	return game.Action{Type: game.ActionType(msg.Type), Answer: payload.Answer, Lifeline: payload.Lifeline}, nil
}
