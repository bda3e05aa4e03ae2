package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Rk346278/real-time-ambulance/internal/triage"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [notes...]",
	Short: "Triage nurse notes and print the assessment",
	Long: `classify scores free-text notes the same way submitted nurse updates are
scored. Notes are taken from the arguments, or from stdin when none are given.`,
	Example: `  ambulance classify "patient not breathing, no pulse"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		notes := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read notes: %w", err)
			}
			notes = string(data)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(triage.Classify(notes))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
