package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
)

func TestAnalyze_TextOutput(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, "", "analyze", writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "CP2000")
	assert.Contains(t, out, "WHAT THIS IRS NOTICE MEANS")
}

func TestAnalyze_JSONOutput(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, "", "analyze", "-o", "json", writeFixture(t))
	require.NoError(t, err)

	var result engine.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "CP2000", string(result.Classification.NoticeType))
	assert.NotEmpty(t, result.AnalysisOutput)
}

func TestAnalyze_ReadsFromStdin(t *testing.T) {
	t.Parallel()

	out, err := runCommand(t, cp2000Fixture, "analyze", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "CP2000")
}

func TestAnalyze_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "   ", "analyze", "-")
	require.Error(t, err)
}

func TestAnalyze_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := runCommand(t, "", "analyze", "/does/not/exist.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read notice file")
}
