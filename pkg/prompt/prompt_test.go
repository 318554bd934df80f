package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "y\n", want: true},
		{input: "YES\n", want: true},
		{input: "  yes  \n", want: true},
		{input: "n\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
		{input: "y", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			var out bytes.Buffer
			c := &Console{In: strings.NewReader(tc.input), Out: &out}
			assert.Equal(t, tc.want, c.Confirm("Contoso Suite", "Remove Contoso Legacy?"))
			assert.Contains(t, out.String(), "Contoso Suite\nRemove Contoso Legacy? [y/N]: ")
		})
	}
}

func TestConsoleReadsSuccessiveAnswers(t *testing.T) {
	c := &Console{In: strings.NewReader("y\nn\n"), Out: &bytes.Buffer{}}
	assert.True(t, c.Confirm("", "first?"))
	assert.False(t, c.Confirm("", "second?"))
	assert.False(t, c.Confirm("", "third?"))
}

func TestAlwaysAndFunc(t *testing.T) {
	assert.True(t, Always(true).Confirm("t", "m"))
	assert.False(t, Always(false).Confirm("t", "m"))

	var asked string
	f := Func(func(title, message string) bool {
		asked = title + ": " + message
		return true
	})
	assert.True(t, f.Confirm("Setup", "Continue?"))
	assert.Equal(t, "Setup: Continue?", asked)
}
