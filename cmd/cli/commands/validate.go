package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bishwash/shiftplanner/pkg/core/model"
	"github.com/bishwash/shiftplanner/pkg/core/services"
)

// ValidateCmd creates the validate command
func ValidateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [schedule_id]",
		Short: "Validate a stored schedule (defaults to the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var scheduleID string
			if len(args) > 0 {
				scheduleID = args[0]
			}

			result, err := services.ValidateSchedule(app.Ctx, app.Database, app.Logger, scheduleID)
			if err != nil {
				return err
			}

			fmt.Printf("\nSchedule %s\n\n", result.ScheduleID)
			if result.Validation.IsValid {
				fmt.Println("Status: VALID (no hard violations)")
			} else {
				fmt.Println("Status: INVALID")
			}
			fmt.Printf("Constraint score: %.3f\n", result.Validation.Score)
			fmt.Printf("Fairness score:   %.3f\n", result.Fairness.OverallScore)

			if len(result.Validation.Violations) > 0 {
				fmt.Printf("\nViolations (%d):\n", len(result.Validation.Violations))
				for _, v := range result.Validation.Violations {
					date := ""
					if !v.Date.IsZero() {
						date = " " + model.DateKey(v.Date)
					}
					fmt.Printf("  [%s]%s %s: %s\n", v.Level, date, v.Kind, v.Description)
				}
			}

			if len(result.Fairness.Recommendations) > 0 {
				fmt.Println("\nRecommendations:")
				for _, r := range result.Fairness.Recommendations {
					fmt.Printf("  - %s\n", r)
				}
			}

			return nil
		},
	}
}
