package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "x := 1", want: "x := 1"},
		{name: "fenced with language", in: "```go\nx := 1\n```", want: "x := 1"},
		{name: "fenced without language", in: "```\nx := 1\n```", want: "x := 1"},
		{name: "surrounding whitespace", in: "\n```py\nprint(1)\n```\n", want: "print(1)"},
		{name: "unterminated", in: "```go\nx := 1", want: "```go\nx := 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripFences(tt.in))
		})
	}
}

func TestCapabilityFor(t *testing.T) {
	assert.True(t, CapabilityImage.Binary())
	assert.False(t, CapabilityVision.Binary())
	_, err := ParseCapability("telepathy")
	assert.Error(t, err)
}
