package cmd

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/numeron/brick/pkg/action/verify"
)

func init() {
	rootCmd.AddCommand(NewVerifyCommand())
}

func NewVerifyCommand() *cobra.Command {
	var (
		flags    generatorFlags
		showDiff bool
	)

	// verifyCmd represents the brick verify command
	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "check generated files are up to date",
		Long:  "Regenerate every unit in memory and compare it with the files on disk, failing on any drift",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := flags.options(c)
			if err != nil {
				return err
			}
			report, err := verify.Check(c.Context(), log, opts)
			if report != nil {
				for _, p := range report.Missing {
					log.Warn("missing generated file", zap.String("path", p))
				}
				for _, p := range report.Stale {
					log.Warn("stale generated file", zap.String("path", p))
				}
				for _, d := range report.Drift {
					log.Warn("generated file drifted", zap.String("path", d.Path))
					if showDiff {
						fmt.Fprintf(c.OutOrStdout(), "--- %s\n%s\n", d.Path, d.Diff)
					}
				}
			}
			if errors.Is(err, verify.ErrDrift) {
				return errors.WithHint(err, "run brick generate")
			}
			return err
		},
	}
	flags.register(verifyCmd, false)
	verifyCmd.Flags().BoolVar(&showDiff, "diff", false, "print the difference for drifted files")

	return verifyCmd
}
