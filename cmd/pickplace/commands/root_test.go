package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootDescribesOrdering(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "Held-Karp")
	assert.Contains(t, rootCmd.Long, "2-opt")
}

func TestRootSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "gen", "bench"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}
