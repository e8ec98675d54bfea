package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/internal/intelligence/engine"
)

// stubGenerator replaces the real model client for the duration of a test.
func stubGenerator(t *testing.T, letter string) {
	t.Helper()
	orig := newGeneratorFactory
	newGeneratorFactory = func(config.GenerationConfig) engine.Generator {
		return engine.GeneratorFunc(func(context.Context, string, string) (string, error) {
			return letter, nil
		})
	}
	t.Cleanup(func() { newGeneratorFactory = orig })
}

func TestGenerate_RequiresStance(t *testing.T) {
	_, err := runCommand(t, "", "generate", writeFixture(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--stance is required")
}

func TestGenerate_PrintsLetter(t *testing.T) {
	stubGenerator(t, "I am writing in response to the notice referenced above.")

	out, err := runCommand(t, "", "generate",
		"--stance", "agree",
		"--explanation", "The proposed changes are correct.",
		writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "I am writing in response to the notice referenced above.")
}

func TestGenerate_DisallowedStance(t *testing.T) {
	stubGenerator(t, "unused")

	out, err := runCommand(t, "", "generate",
		"--stance", "refuse_to_pay",
		writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Position not allowed")
	assert.Contains(t, out, "agree")
}

func TestGenerate_ProhibitedExplanationWarns(t *testing.T) {
	stubGenerator(t, "unused")

	out, err := runCommand(t, "", "generate",
		"--stance", "agree",
		"--explanation", "I forgot to report that income.",
		writeFixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "WARNING:")
}

func TestMigrate_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("NOTICE_DATABASE_URL", "")

	_, err := runCommand(t, "", "migrate", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NOTICE_DATABASE_URL")
}
