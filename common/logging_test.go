package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewLogger("shadows", false, &out, &errOut)

	l.Debugf("hidden %d", 1)
	l.Infof("hello %s", "there")
	l.Warnf("careful")
	l.Errorf("broken: %v", "x")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[shadows] INFO: hello there")
	assert.Contains(t, errOut.String(), "[shadows] WARN: careful")
	assert.Contains(t, errOut.String(), "[shadows] ERROR: broken: x")

	l.SetDebug(true)
	assert.True(t, l.DebugEnabled())
	l.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "DEBUG: shown 2")
}

func TestDefaultLoggerNoPrefix(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger("", false, &out, &out)
	l.Infof("plain")
	assert.Contains(t, out.String(), "INFO: plain")
	assert.NotContains(t, out.String(), "[")
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.SetDebug(true)
	assert.False(t, l.DebugEnabled())
	l.Infof("nothing")
}
