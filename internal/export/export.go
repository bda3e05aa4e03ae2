// Package export dumps the stored driver and nurse updates to JSON or Parquet
// files, either on local disk or in an S3 bucket.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/Rk346278/real-time-ambulance/internal/cloudwriter"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"golang.org/x/sync/errgroup"
)

const (
	FormatJSON    = "json"
	FormatParquet = "parquet"

	DestinationLocal = "local"
	DestinationCloud = "cloud"

	DatasetDriverUpdates = "driver_updates"
	DatasetNurseUpdates  = "nurse_updates"
)

// File describes one written dataset.
type File struct {
	Dataset  string `json:"dataset"`
	Location string `json:"location"`
	Records  int    `json:"records"`
}

type Exporter struct {
	cfg     models.ExportConfig
	drivers repositories.DriverUpdateRepository
	nurses  repositories.NurseUpdateRepository
	cloud   cloudwriter.CloudWriterFactory
	logger  *slog.Logger
}

// NewExporter validates cfg. cloud is required only for the cloud
// destination.
func NewExporter(cfg models.ExportConfig, drivers repositories.DriverUpdateRepository, nurses repositories.NurseUpdateRepository, cloud cloudwriter.CloudWriterFactory, logger *slog.Logger) (*Exporter, error) {
	switch cfg.Format {
	case FormatJSON, FormatParquet:
	default:
		return nil, fmt.Errorf("unsupported export format: %s", cfg.Format)
	}
	switch cfg.Destination {
	case DestinationLocal:
	case DestinationCloud:
		if cloud == nil {
			return nil, fmt.Errorf("cloud export needs a cloud writer factory")
		}
	default:
		return nil, fmt.Errorf("unsupported export destination: %s", cfg.Destination)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{cfg: cfg, drivers: drivers, nurses: nurses, cloud: cloud, logger: logger}, nil
}

// Export writes both datasets concurrently and returns what was written.
func (e *Exporter) Export(ctx context.Context) ([]File, error) {
	files := make([]File, 2)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		updates, err := e.drivers.ListRecent(ctx, e.cfg.Limit)
		if err != nil {
			return fmt.Errorf("list driver updates: %w", err)
		}
		rows := make([]models.DriverUpdateRow, 0, len(updates))
		for _, u := range updates {
			rows = append(rows, u.Row())
		}
		f, err := writeDataset(ctx, e, DatasetDriverUpdates, rows, new(models.DriverUpdateRow))
		files[0] = f
		return err
	})

	g.Go(func() error {
		updates, err := e.nurses.ListRecent(ctx, e.cfg.Limit)
		if err != nil {
			return fmt.Errorf("list nurse updates: %w", err)
		}
		rows := make([]models.NurseUpdateRow, 0, len(updates))
		for _, u := range updates {
			rows = append(rows, u.Row())
		}
		f, err := writeDataset(ctx, e, DatasetNurseUpdates, rows, new(models.NurseUpdateRow))
		files[1] = f
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, f := range files {
		e.logger.Info("dataset exported", "dataset", f.Dataset, "location", f.Location, "records", f.Records)
	}
	return files, nil
}

func writeDataset[T any](ctx context.Context, e *Exporter, dataset string, rows []T, schema *T) (File, error) {
	name := dataset + "." + e.cfg.Format
	file := File{Dataset: dataset, Records: len(rows)}

	switch e.cfg.Format {
	case FormatParquet:
		fw, location, err := e.parquetFile(ctx, name)
		if err != nil {
			return file, err
		}
		file.Location = location
		return file, writeParquet(fw, rows, schema)
	default:
		w, location, err := e.plainFile(ctx, name)
		if err != nil {
			return file, err
		}
		file.Location = location
		return file, writeJSON(w, rows)
	}
}

func (e *Exporter) localPath(name string) (string, error) {
	dir := filepath.Join(e.cfg.OutputPath, e.cfg.OutputFolder)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (e *Exporter) objectPath(name string) string {
	return path.Join(e.cfg.OutputFolder, name)
}

func (e *Exporter) parquetFile(ctx context.Context, name string) (source.ParquetFile, string, error) {
	if e.cfg.Destination == DestinationCloud {
		objectPath := e.objectPath(name)
		cw, err := e.cloud.NewWriter(ctx, e.cfg.CloudStorage.BucketName, objectPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return NewCloudParquetFile(cw), "s3://" + e.cfg.CloudStorage.BucketName + "/" + objectPath, nil
	}

	filePath, err := e.localPath(name)
	if err != nil {
		return nil, "", err
	}
	fw, err := local.NewLocalFileWriter(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, filePath, nil
}

func (e *Exporter) plainFile(ctx context.Context, name string) (io.WriteCloser, string, error) {
	if e.cfg.Destination == DestinationCloud {
		objectPath := e.objectPath(name)
		cw, err := e.cloud.NewWriter(ctx, e.cfg.CloudStorage.BucketName, objectPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return cw, "s3://" + e.cfg.CloudStorage.BucketName + "/" + objectPath, nil
	}

	filePath, err := e.localPath(name)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Create(filePath)
	if err != nil {
		return nil, "", err
	}
	return f, filePath, nil
}

func writeParquet[T any](fw source.ParquetFile, rows []T, schema *T) error {
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		fw.Close()
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			fw.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return fw.Close()
}

func writeJSON[T any](w io.WriteCloser, rows []T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		w.Close()
		return fmt.Errorf("failed to encode rows: %w", err)
	}
	return w.Close()
}
