package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numeron/brick/pkg/options"
)

func newTestCommand(incremental bool) (*cobra.Command, *generatorFlags) {
	var flags generatorFlags
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	flags.register(c, incremental)
	return c, &flags
}

func TestGeneratorFlagsDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	c, flags := newTestCommand(true)
	require.NoError(t, c.ParseFlags([]string{}))

	o, err := flags.options(c)
	require.NoError(t, err)
	assert.Equal(t, options.DefaultBaseType, o.BaseType)
	assert.Equal(t, options.NamingSuffix, o.Naming)
	assert.False(t, o.Incremental)
	assert.Equal(t, options.DefaultCollections(), o.Collections)
}

func TestGeneratorFlagsOverrideConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("generator", map[string]any{
		"naming":      "plural",
		"file_suffix": "_vm.go",
	})

	c, flags := newTestCommand(true)
	require.NoError(t, c.ParseFlags([]string{
		"--suffix", "_accessors.go",
		"--collection", "Deque=example.com/deque",
		"--changed", "a.go",
	}))

	o, err := flags.options(c)
	require.NoError(t, err)
	assert.Equal(t, options.NamingPlural, o.Naming)
	assert.Equal(t, "_accessors.go", o.FileSuffix)
	assert.True(t, o.Incremental)
	assert.Equal(t, options.ChangesExplicit, o.Changes)
	assert.Equal(t, []string{"a.go"}, o.Changed)
	assert.Contains(t, o.CollectionPackages(), "Deque")
}

func TestGeneratorFlagsInvalid(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	c, flags := newTestCommand(false)
	require.NoError(t, c.ParseFlags([]string{"--base-type", "ViewModel"}))

	_, err := flags.options(c)
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, lvl := range []string{"trace", "debug", "info", "warn", "error"} {
		l, err := newLogger(lvl, "json")
		require.NoError(t, err, lvl)
		require.NotNil(t, l)
	}
	_, err := newLogger("loud", "console")
	require.Error(t, err)
}
