package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/educoach-ai/educoach/internal/diagnosis"
	"github.com/educoach-ai/educoach/internal/recommend"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <scores-json>",
	Short: "Diagnose a score object without calling the LLM",
	Long: `Diagnose classifies an existing score object and prints the diagnosis and
recommendations. Scores may be bare numbers or objects with a "score" field:

  educoach diagnose '{"reading_comprehension": 45, "grammar": {"score": 70}}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadContent(cmd)
		if err != nil {
			return err
		}

		d, err := diagnosis.New(c).DiagnoseJSON([]byte(args[0]))
		if err != nil {
			return err
		}

		out := struct {
			Diagnosis       diagnosis.Diagnosis `json:"diagnosis"`
			Recommendations recommend.Bundle    `json:"recommendations"`
		}{d, recommend.New(c).Recommend(d)}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("write diagnosis: %w", err)
		}
		return nil
	},
}
