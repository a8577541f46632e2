package services

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound websocket actions.
const (
	ActionUpdateScore  = "update_score"
	ActionUpdateStatus = "update_status"
	ActionNextQuestion = "next_question"
	ActionBuzz         = "buzz"
	ActionTimerTick    = "timer_tick"
)

var ErrUnknownAction = errors.New("unknown action")

// Command is one decoded client message. Each action gets its own struct
// so the dispatcher's type switch covers every case explicitly instead of
// matching on raw strings.
type Command interface {
	isCommand()
}

type UpdateScoreCommand struct {
	TeamID string
	Points int
}

type UpdateStatusCommand struct {
	TeamID string
	Status string
}

type NextQuestionCommand struct {
	QuestionID string
}

type BuzzCommand struct {
	TeamID string
}

type TimerTickCommand struct {
	Seconds int
}

func (UpdateScoreCommand) isCommand() {}
func (UpdateStatusCommand) isCommand() {}
func (NextQuestionCommand) isCommand() {}
func (BuzzCommand) isCommand() {}
func (TimerTickCommand) isCommand() {}

type envelope struct {
	Action     string `json:"action"`
	TeamID     string `json:"team_id"`
	Points     int    `json:"points"`
	Status     string `json:"status"`
	QuestionID string `json:"question_id"`
	Seconds    int    `json:"seconds"`
}

// DecodeCommand parses one inbound message into its typed command. A
// malformed payload or an action outside the known set is an error the
// caller reports back to the sender.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed command: %w", err)
	}

	switch env.Action {
	case ActionUpdateScore:
		return UpdateScoreCommand{TeamID: env.TeamID, Points: env.Points}, nil
	case ActionUpdateStatus:
		return UpdateStatusCommand{TeamID: env.TeamID, Status: env.Status}, nil
	case ActionNextQuestion:
		return NextQuestionCommand{QuestionID: env.QuestionID}, nil
	case ActionBuzz:
		return BuzzCommand{TeamID: env.TeamID}, nil
	case ActionTimerTick:
		return TimerTickCommand{Seconds: env.Seconds}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
	}
}
