package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/numeron/brick/pkg/action/watch"
)

func init() {
	rootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	var (
		flags    generatorFlags
		debounce time.Duration
	)

	// watchCmd represents the brick watch command
	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "regenerate on change",
		Long:  "Run a full pass, then regenerate the units of changed files until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			return watch.New(log, opts, debounce).Run(c.Context())
		},
	}
	flags.register(watchCmd, false)
	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a pass runs")

	return watchCmd
}
