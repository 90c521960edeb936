package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	keyDay       int
	monthlyLimit int
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "monthly returns with months starting on a key day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		day := env.cfg.Returns.KeyDay
		if cmd.Flags().Changed("key-day") {
			day = keyDay
		}

		start := time.Now()
		rows, err := env.calculator().MonthlyReturns(cmd.Context(), day)
		if err != nil {
			return err
		}
		env.log.WithField("duration", time.Since(start)).Info("monthly returns done")

		return renderMonthly(os.Stdout, day, rows, monthlyLimit)
	},
}

func init() {
	monthlyCmd.Flags().IntVarP(&keyDay, "key-day", "k", 15, "day of month that starts a period, overrides the config")
	monthlyCmd.Flags().IntVarP(&monthlyLimit, "limit", "n", 25, "rows to print, 0 prints all")
}
