package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bishwash/shiftplanner/pkg/core/services"
)

// ConfidenceCmd creates the confidence command
func ConfidenceCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confidence",
		Short: "Show historical reliability metrics from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ReliabilityReport(app.Ctx, app.Database, app.Logger)
			if err != nil {
				return err
			}

			m := result.Metrics
			fmt.Printf("\nReliability over %d runs\n\n", m.Runs)
			if m.Runs == 0 {
				fmt.Println("No generation runs recorded yet.")
				return nil
			}

			fmt.Printf("Success rate:       %.1f%%\n", 100*m.SuccessRate)
			fmt.Printf("Average confidence: %.1f\n", m.AverageConfidence)
			fmt.Printf("Fallback usage:     %.1f%%\n", 100*m.FallbackUsageRate)

			fmt.Println("\nRecent runs:")
			audits := result.Audits
			if len(audits) > 10 {
				audits = audits[len(audits)-10:]
			}
			for _, a := range audits {
				fmt.Printf("  %s  %-20s confidence=%-3d gate=%-4s %s\n",
					a.CreatedAt, a.Strategy, a.Confidence, a.Gate, a.Recommendation)
			}

			return nil
		},
	}
}
