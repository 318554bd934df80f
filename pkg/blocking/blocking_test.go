package blocking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLister struct{}

func (failingLister) Names() ([]string, error) {
	return nil, errors.New("access denied")
}

func TestProcessName(t *testing.T) {
	assert.Equal(t, "setup", ProcessName("setup.exe"))
	assert.Equal(t, "setup", ProcessName("setup.EXE"))
	assert.Equal(t, "setup", ProcessName("setup"))
	assert.Equal(t, ".exe", ProcessName(".exe"))
	assert.Equal(t, "msiexec.exe.bak", ProcessName("msiexec.exe.bak"))
}

func TestCount(t *testing.T) {
	procs := Static{"svchost.exe", "svchost.exe", "Outlook.exe", "explorer"}

	tests := []struct {
		name string
		want int
	}{
		{name: "svchost", want: 2},
		{name: "svchost.exe", want: 2},
		{name: "Outlook", want: 1},
		{name: "outlook", want: 0},
		{name: "explorer", want: 1},
		{name: "notepad", want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Count(procs, tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIsAppRunning(t *testing.T) {
	assert.True(t, IsAppRunning(Static{"winword.exe"}, "winword"))
	assert.False(t, IsAppRunning(Static{"winword.exe"}, "excel"))
	assert.False(t, IsAppRunning(failingLister{}, "winword"))
}
