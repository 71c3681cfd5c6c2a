package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionStampsAppAndEnv(t *testing.T) {
	l := NewLogger("onde-ir", "production")
	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.WithField("env", "override").Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "onde-ir", line["app"])
	assert.Equal(t, "override", line["env"])
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestNewLogger_Development(t *testing.T) {
	l := NewLogger("onde-ir", "development")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
}
