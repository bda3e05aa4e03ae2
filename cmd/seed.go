package cmd

import (
	"encoding/json"

	"github.com/Rk346278/real-time-ambulance/internal/factories"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fake driver and nurse updates",
	Long: `seed generates plausible driver and nurse updates and stores them in the
configured database. Without a database the records are printed as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		flags := cmd.Flags()
		nNurses, _ := flags.GetInt("nurses")
		nDrivers, _ := flags.GetInt("drivers")
		seed, _ := flags.GetInt64("seed")
		window, _ := flags.GetDuration("window")

		f := factories.New(seed)
		drivers := f.CreateDriverUpdates(nDrivers, window)
		nurses := f.CreateNurseUpdates(nNurses, window)

		if cfg.Database.DSN == "" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"driverUpdates": drivers, "nurseUpdates": nurses})
		}

		st, err := openStores(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer st.close()

		bar := progressbar.NewOptions(2,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("seeding"),
		)
		if err := st.drivers.BulkCreate(ctx, drivers); err != nil {
			return err
		}
		_ = bar.Add(1)
		if err := st.nurses.BulkCreate(ctx, nurses); err != nil {
			return err
		}
		_ = bar.Add(1)
		_ = bar.Finish()

		logger.Info("seeded records", "driver_updates", len(drivers), "nurse_updates", len(nurses))
		return nil
	},
}

func init() {
	seedCmd.Flags().Int("nurses", 50, "number of nurse updates")
	seedCmd.Flags().Int("drivers", 20, "number of driver updates")
	seedCmd.Flags().Int64("seed", 42, "random seed")
	seedCmd.Flags().Duration("window", 0, "spread created timestamps over this past window")

	rootCmd.AddCommand(seedCmd)
}
