package cmd

import (
	"github.com/Rk346278/real-time-ambulance/internal/cloudwriter"
	"github.com/Rk346278/real-time-ambulance/internal/export"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump stored driver and nurse updates to JSON or Parquet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStores(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer st.close()

		var factory cloudwriter.CloudWriterFactory
		if cfg.Export.Destination == export.DestinationCloud {
			factory, err = cloudwriter.NewS3WriterFactory(ctx, cfg.Export.CloudStorage.Region)
			if err != nil {
				return err
			}
		}

		exporter, err := export.NewExporter(cfg.Export, st.drivers, st.nurses, factory, logger)
		if err != nil {
			return err
		}
		_, err = exporter.Export(ctx)
		return err
	},
}

func init() {
	exportCmd.Flags().String("format", "json", "output format: json or parquet")
	exportCmd.Flags().String("destination", "local", "output destination: local or cloud")
	exportCmd.Flags().String("output-path", ".", "base directory for local exports")
	exportCmd.Flags().String("bucket", "", "S3 bucket for cloud exports")

	_ = viper.BindPFlag("export.format", exportCmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("export.destination", exportCmd.Flags().Lookup("destination"))
	_ = viper.BindPFlag("export.output_path", exportCmd.Flags().Lookup("output-path"))
	_ = viper.BindPFlag("export.cloud_storage.bucket_name", exportCmd.Flags().Lookup("bucket"))

	rootCmd.AddCommand(exportCmd)
}
