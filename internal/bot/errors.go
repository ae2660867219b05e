package bot

import "errors"

var (
	// ErrInvalidMessage reports an incoming event with no chat or sender.
	ErrInvalidMessage = errors.New("invalid message: missing chat or sender")

	// ErrOutdatedMessage reports a callback whose originating message is
	// gone. There is nowhere to send a reply, so the event is dropped.
	ErrOutdatedMessage = errors.New("outdated message")
)
