package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_LevelAndWriter(t *testing.T) {
	t.Cleanup(func() { _ = InitLogger("", "warn", os.Stderr) })

	var buf bytes.Buffer
	require.NoError(t, InitLogger("", "info", &buf))
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	logrus.WithField("file", "a.txt").Info("Scanned")
	logrus.Debug("hidden")
	assert.Contains(t, buf.String(), "Scanned")
	assert.Contains(t, buf.String(), "file=a.txt")
	assert.NotContains(t, buf.String(), "hidden")
	assert.NotContains(t, buf.String(), "\x1b[", "no colours on a non-terminal")
}

func TestInitLogger_BadLevel(t *testing.T) {
	assert.Error(t, InitLogger("", "loud", &bytes.Buffer{}))
}

func TestInitLogger_Logfile(t *testing.T) {
	t.Cleanup(func() { _ = InitLogger("", "warn", os.Stderr) })

	logfile := filepath.Join(t.TempDir(), "grep.log")
	var buf bytes.Buffer
	require.NoError(t, InitLogger(logfile, "warn", &buf))

	logrus.Warn("to the file")
	b, err := os.ReadFile(logfile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "to the file")
	assert.Empty(t, buf.String())
}
