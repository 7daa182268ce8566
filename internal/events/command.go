package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Action identifies a client-issued command read off the socket.
type Action string

const (
	ActionJoin   Action = "join"
	ActionLeave  Action = "leave"
	ActionSend   Action = "send"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	ActionTyping Action = "typing"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionJoin, ActionLeave, ActionSend, ActionEdit, ActionDelete, ActionTyping:
		return true
	default:
		return false
	}
}

// Command is the decoded client frame. Payload stays raw until the
// action-specific decode below.
type Command struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type JoinCommand struct {
	RoomID string `json:"roomId"`
}

type SendCommand struct {
	RoomID   string  `json:"roomId"`
	Body     string  `json:"body"`
	ReplyTo  *string `json:"replyTo,omitempty"`
	URL      *string `json:"url,omitempty"`
	FileName *string `json:"fileName,omitempty"`
}

type EditCommand struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
	Body      string `json:"body"`
}

type DeleteCommand struct {
	MessageID string `json:"messageId"`
	RoomID    string `json:"roomId"`
}

type TypingCommand struct {
	RoomID   string `json:"roomId"`
	IsTyping bool   `json:"isTyping"`
}

// DecodeCommand parses a raw client frame and validates the action.
func DecodeCommand(raw []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command frame: %w", err)
	}
	if !cmd.Action.IsValid() {
		return Command{}, fmt.Errorf("unknown action %q", cmd.Action)
	}
	return cmd, nil
}

// DecodeSend normalizes the optional fields at the boundary: a present
// but blank replyTo collapses to nil, so downstream code performs a
// single presence check.
func (c Command) DecodeSend() (SendCommand, error) {
	var sc SendCommand
	if err := json.Unmarshal(c.Payload, &sc); err != nil {
		return SendCommand{}, fmt.Errorf("malformed send payload: %w", err)
	}
	sc.ReplyTo = normalize(sc.ReplyTo)
	sc.URL = normalize(sc.URL)
	sc.FileName = normalize(sc.FileName)
	return sc, nil
}

func (c Command) DecodeJoin() (JoinCommand, error) {
	var jc JoinCommand
	if err := json.Unmarshal(c.Payload, &jc); err != nil {
		return JoinCommand{}, fmt.Errorf("malformed join payload: %w", err)
	}
	return jc, nil
}

func (c Command) DecodeEdit() (EditCommand, error) {
	var ec EditCommand
	if err := json.Unmarshal(c.Payload, &ec); err != nil {
		return EditCommand{}, fmt.Errorf("malformed edit payload: %w", err)
	}
	return ec, nil
}

func (c Command) DecodeDelete() (DeleteCommand, error) {
	var dc DeleteCommand
	if err := json.Unmarshal(c.Payload, &dc); err != nil {
		return DeleteCommand{}, fmt.Errorf("malformed delete payload: %w", err)
	}
	return dc, nil
}

func (c Command) DecodeTyping() (TypingCommand, error) {
	var tc TypingCommand
	if err := json.Unmarshal(c.Payload, &tc); err != nil {
		return TypingCommand{}, fmt.Errorf("malformed typing payload: %w", err)
	}
	return tc, nil
}

func normalize(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
