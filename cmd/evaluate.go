package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <answer1> <answer2> <answer3>",
	Short: "Assess one set of answers and print the JSON report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContent(cmd)
		if err != nil {
			return err
		}
		ch, err := newCoach(cmd, c)
		if err != nil {
			return err
		}

		report, err := ch.Assess(cmd.Context(), args)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return nil
	},
}
