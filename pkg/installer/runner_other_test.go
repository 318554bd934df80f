//go:build !windows

package installer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner(t *testing.T) {
	var r ExecRunner

	code, err := r.Run("/bin/sh", `-c "exit 3"`)
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	code, err = r.Run("/bin/sh", `-c 'exit 0'`)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	_, err = r.Run("/nonexistent/installer", "")
	assert.Error(t, err)

	_, err = r.Run("/bin/sh", `-c "unterminated`)
	assert.Error(t, err)
}
