package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var passageCmd = &cobra.Command{
	Use:   "passage",
	Short: "Print the reading passage and its questions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContent(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, c.Passage())
		fmt.Fprintln(out)
		for i, q := range c.Questions() {
			fmt.Fprintf(out, "%d. %s\n", i+1, q)
		}
		return nil
	},
}
