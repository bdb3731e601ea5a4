package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncode(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "join",
			cmd:  JoinRoom("r1"),
			want: `{"type":"join-room","roomId":"r1"}`,
		},
		{
			name: "leave",
			cmd:  LeaveRoom("r1"),
			want: `{"type":"leave-room","roomId":"r1"}`,
		},
		{
			name: "send",
			cmd:  SendMessage("r1", "hello"),
			want: `{"type":"send-message","roomId":"r1","content":"hello"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.cmd.Encode()
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestCommandEncodeErrors(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
	}{
		{"unknown type", Command{Type: "shout", RoomID: "r1"}},
		{"missing room", JoinRoom("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.Encode()
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	data := []byte(`{"type":"send-message","roomId":"r1","content":"hello"}`)
	cmd, err := DecodeCommand(data)
	require.NoError(t, err)
	assert.Equal(t, SendMessage("r1", "hello"), cmd)

	_, err = DecodeCommand([]byte(`{"type":"shout","roomId":"r1"}`))
	assert.Error(t, err)
}
