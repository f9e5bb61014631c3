package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/numeron/brick/pkg/action/generate"
)

func init() {
	rootCmd.AddCommand(NewGenerateCommand())
}

func NewGenerateCommand() *cobra.Command {
	var flags generatorFlags

	// generateCmd represents the brick generate command
	var generateCmd = &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "generate accessors",
		Long:    "Generate lazy and eager accessors for every struct embedding the base type",
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			res, err := generate.Run(c.Context(), log, opts)
			if err != nil {
				return err
			}
			log.Info("generated",
				zap.Int("units", len(res.Units)),
				zap.Int("written", len(res.Written)),
				zap.Int("removed", len(res.Removed)))
			return nil
		},
	}
	flags.register(generateCmd, true)

	return generateCmd
}
