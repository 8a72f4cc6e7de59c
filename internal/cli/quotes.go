package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fxvol/internal/logging"
	"fxvol/internal/marketdata"
)

// addQuoteCommands adds quote snapshot management commands.
func addQuoteCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Manage stored quote snapshots",
		Long:  "Import CSV quote sheets into the snapshot store and inspect stored snapshots.",
	}

	cmd.AddCommand(newQuotesImportCmd(app))
	cmd.AddCommand(newQuotesListCmd(app))
	cmd.AddCommand(newQuotesShowCmd(app))
	cmd.AddCommand(newQuotesDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newQuotesImportCmd(app *App) *cobra.Command {
	var spot float64

	cmd := &cobra.Command{
		Use:   "import <name> <sheet.csv>",
		Short: "Validate a quote sheet and store it as a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			name, path := args[0], args[1]
			start := time.Now()

			if spot == 0 {
				spot = app.Config.Market.Spot
			}
			snap, err := marketdata.LoadSheet(path, name, spot)
			if err == nil {
				_, err = marketdata.BuildInputs(snap)
			}
			if err != nil {
				logging.LogQuoteImport(app.Logger, name, path, 0, time.Since(start), err)
				return err
			}

			st, err := app.openStore()
			if err != nil {
				return err
			}
			err = st.SaveSnapshot(cmd.Context(), snap)
			logging.LogQuoteImport(app.Logger, name, path, len(snap.Points), time.Since(start), err)
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"name":   snap.Name,
					"spot":   snap.Spot,
					"points": len(snap.Points),
				})
			}
			output.Success("Imported %d tenors into snapshot %q (spot %g)", len(snap.Points), snap.Name, snap.Spot)
			return nil
		},
	}

	cmd.Flags().Float64Var(&spot, "spot", 0, "spot used when the sheet carries none")

	return cmd
}

func newQuotesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			infos, err := st.ListSnapshots(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(infos)
			}
			if len(infos) == 0 {
				output.Dim("No snapshots stored")
				return nil
			}

			table := NewTable(output, "NAME", "SPOT", "TENORS", "MAX T", "CREATED", "SOURCE")
			for _, info := range infos {
				table.AddRow(
					info.Name,
					fmt.Sprintf("%g", info.Spot),
					fmt.Sprintf("%d", info.Points),
					FormatTenor(info.MaxTenor),
					info.CreatedAt.Local().Format("2006-01-02 15:04"),
					info.Source,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newQuotesShowCmd(app *App) *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the quotes of a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			snap, err := st.GetSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}
			if asCSV {
				return marketdata.WriteSheet(cmd.OutOrStdout(), snap)
			}

			output.Bold("Snapshot %s  (spot %g)", snap.Name, snap.Spot)
			table := NewTable(output, "TENOR", "YIELD", "ATM", "RR25", "BB25", "RR10", "BB10")
			for _, p := range snap.Points {
				table.AddRow(
					FormatTenor(p.Tenor),
					FormatRate(p.Yield),
					FormatVol(p.ATM),
					FormatVol(p.RR25),
					FormatVol(p.BB25),
					FormatVol(p.RR10),
					FormatVol(p.BB10),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "print as a CSV quote sheet")

	return cmd
}

func newQuotesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			st, err := app.openStore()
			if err != nil {
				return err
			}
			if err := st.DeleteSnapshot(cmd.Context(), args[0]); err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"deleted": args[0]})
			}
			output.Success("Deleted snapshot %q", args[0])
			return nil
		},
	}
}
