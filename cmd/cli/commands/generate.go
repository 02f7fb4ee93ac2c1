package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bishwash/shiftplanner/pkg/core/model"
	"github.com/bishwash/shiftplanner/pkg/core/services"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <range_start> <range_end>",
		Short: "Generate a shift schedule for the given date range",
		Long: `Generate a shift schedule covering range_start to range_end (inclusive, YYYY-MM-DD).
The engine applies the rotating weekly patterns, assigns weekend coverage and
screener duty, optimizes the result, and gates it on a confidence score.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rangeStart, err := time.Parse(model.DateFormat, args[0])
			if err != nil {
				return fmt.Errorf("invalid range_start: %w", err)
			}
			rangeEnd, err := time.Parse(model.DateFormat, args[1])
			if err != nil {
				return fmt.Errorf("invalid range_end: %w", err)
			}

			dryRun, _ := cmd.Flags().GetBool("dry-run")
			strategy, _ := cmd.Flags().GetString("strategy")
			seed, _ := cmd.Flags().GetInt64("seed")

			cfg := *app.Cfg
			if strategy != "" {
				cfg.Engine.Strategy = strategy
			}
			if seed != 0 {
				cfg.Engine.Seed = seed
			}

			result, err := services.GenerateSchedule(app.Ctx, app.Database, &cfg, app.Logger, rangeStart, rangeEnd, dryRun)
			if err != nil {
				return err
			}

			eng := result.Engine
			fmt.Printf("\nSchedule %s (%s to %s)\n\n",
				result.ScheduleID,
				model.DateKey(result.RangeStart),
				model.DateKey(result.RangeEnd))
			fmt.Printf("Assignments:    %d\n", len(eng.Assignments))
			fmt.Printf("Overwrites:     %d\n", len(eng.Overwrites))
			fmt.Printf("Strategy:       %s (attempts: %d)\n", eng.Metrics.StrategyUsed, eng.Metrics.Attempts)
			fmt.Printf("Confidence:     %d [%s] -> %s\n",
				eng.Confidence.Overall, eng.Confidence.Gate, eng.Confidence.Recommendation)
			fmt.Printf("Fairness:       %.3f (gini %.3f)\n", eng.Fairness.OverallScore, eng.Fairness.WorkloadGini)

			if len(eng.Conflicts) > 0 {
				fmt.Printf("\nConflicts (%d):\n", len(eng.Conflicts))
				for _, c := range eng.Conflicts {
					fmt.Printf("  [%s] %s %s: %s\n", c.Severity, model.DateKey(c.Date), c.Type, c.Message)
				}
			}

			if dryRun {
				fmt.Println("\nDry run - nothing saved.")
			} else if result.Saved {
				fmt.Println("\nSchedule saved.")
			} else {
				fmt.Println("\nSchedule rejected by the reliability gate - not saved.")
			}

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Run without saving to the database")
	cmd.Flags().String("strategy", "", "Override the configured optimization strategy")
	cmd.Flags().Int64("seed", 0, "Fix the randomization seed for a reproducible run")

	return cmd
}
