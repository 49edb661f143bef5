package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/draftkit/log"
)

func TestLogrusJSONIncludesValues(t *testing.T) {
	var buf bytes.Buffer
	l := log.New(log.Options{Out: &buf, JSON: true}).WithValues(log.Kv{"session": "abc"})

	l.Warningf("translation failed for %q", "x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warning", line["level"])
	assert.Equal(t, `translation failed for "x"`, line["msg"])
	assert.Equal(t, "abc", line["session"])
}

func TestLogrusDebugLevel(t *testing.T) {
	tests := map[string]struct {
		debug   bool
		expLogs bool
	}{
		"Debug disabled should drop debug lines": {debug: false, expLogs: false},
		"Debug enabled should keep debug lines":  {debug: true, expLogs: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			l := log.New(log.Options{Out: &buf, Debug: test.debug})
			l.Debugf("scan took %d ms", 3)
			assert.Equal(t, test.expLogs, buf.Len() > 0)
		})
	}
}

func TestNoopIsSilent(t *testing.T) {
	l := log.Noop.WithValues(log.Kv{"k": "v"})
	l.Infof("nothing")
	l.Errorf("nothing")
	assert.Equal(t, log.Noop, l)
}
