package version

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionDefaults(t *testing.T) {
	v := Version()
	assert.Equal(t, "cimianboot", v.AppName)
	assert.Equal(t, runtime.Version(), v.GoVersion)
	assert.Equal(t, "cimianboot "+v.Version, v.String())
}

func TestPrintFull(t *testing.T) {
	var buf bytes.Buffer
	PrintFull(&buf)
	assert.Contains(t, buf.String(), "cimianboot")
	assert.Contains(t, buf.String(), "go version:")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "1.2", Normalize("1.2.0.0"))
	assert.Equal(t, "0", Normalize("0.0"))
	assert.Equal(t, "3.5.1", Normalize("3.5.1"))
}
