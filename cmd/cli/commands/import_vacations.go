package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bishwash/shiftplanner/pkg/core/services"
)

// ImportVacationsCmd creates the importVacations command
func ImportVacationsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "importVacations [calendar_path]",
		Short: "Import analyst vacations from an out-of-office ICS calendar",
		Long: `Import vacations from an iCalendar export. Events named like "Jane Doe OOO"
are matched to analysts by name. Omitting the path uses the vacationCalendar
setting from the config file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Cfg.VacationCalendar
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no calendar path given and vacationCalendar is not configured")
			}

			result, err := services.ImportVacations(app.Ctx, app.Database, app.Calendar, app.Logger, path)
			if err != nil {
				return err
			}

			fmt.Printf("\nImported %d vacation entries.\n", result.Imported)
			if len(result.UnmatchedNames) > 0 {
				fmt.Printf("\nUnmatched calendar names (%d):\n", len(result.UnmatchedNames))
				for _, name := range result.UnmatchedNames {
					fmt.Printf("  - %s\n", name)
				}
			}

			return nil
		},
	}
}
