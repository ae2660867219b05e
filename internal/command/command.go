package command

import "errors"

// MsgCommand is a recognized free-text command.
type MsgCommand int

const (
	MsgList MsgCommand = iota
	MsgUpdate
	MsgVersion
)

// ErrUnknownCommand reports text that is not one of the command tokens.
var ErrUnknownCommand = errors.New("unknown command")

// ParseMessageCommand matches text against the fixed command tokens.
// Matching is exact and case-sensitive; anything else, the empty string
// included, is ErrUnknownCommand.
func ParseMessageCommand(text string) (MsgCommand, error) {
	switch text {
	case "list":
		return MsgList, nil
	case "update":
		return MsgUpdate, nil
	case "version":
		return MsgVersion, nil
	default:
		return 0, ErrUnknownCommand
	}
}
