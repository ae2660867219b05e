package command_test

import (
	"testing"

	"kitsubot/internal/command"

	"github.com/stretchr/testify/assert"
)

func TestParseMessageCommand(t *testing.T) {
	type testCase struct {
		name    string
		text    string
		want    command.MsgCommand
		correct bool
	}

	tests := []testCase{
		{name: "list token", text: "list", want: command.MsgList, correct: true},
		{name: "update token", text: "update", want: command.MsgUpdate, correct: true},
		{name: "version token", text: "version", want: command.MsgVersion, correct: true},
		{name: "empty text", text: "", correct: false},
		{name: "whitespace only", text: "  ", correct: false},
		{name: "mixed case is not recognized", text: "List", correct: false},
		{name: "leading space", text: " list", correct: false},
		{name: "trailing garbage", text: "list now", correct: false},
		{name: "unrelated text", text: "frobnicate", correct: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := command.ParseMessageCommand(test.text)

			if !test.correct {
				assert.ErrorIs(t, err, command.ErrUnknownCommand)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
