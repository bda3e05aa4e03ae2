package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/cloudwriter"
	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

var created = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func seededRepos(t *testing.T) (*memory.DriverUpdateRepository, *memory.NurseUpdateRepository) {
	ctx := context.Background()
	drivers := memory.NewDriverUpdateRepository()
	nurses := memory.NewNurseUpdateRepository()
	require.NoError(t, drivers.Create(ctx, &models.DriverUpdate{ID: "d1", FromLocation: "Depot", ToLocation: "City General", CreatedAt: created}))
	require.NoError(t, nurses.BulkCreate(ctx, []*models.NurseUpdate{
		{ID: "n1", PatientName: "A. Rao", Age: 40, Notes: "fever", SeverityScore: 35, ConditionSeverity: models.ConditionStable, ImmediateRequirement: "General Ward Observation", CreatedAt: created},
		{ID: "n2", PatientName: "B. Das", Age: 71, Notes: "stroke", SeverityScore: 95, ConditionSeverity: models.ConditionCritical, ImmediateRequirement: "Emergency ICU Admission", CreatedAt: created},
	}))
	return drivers, nurses
}

func TestExporter_LocalJSON(t *testing.T) {
	drivers, nurses := seededRepos(t)
	dir := t.TempDir()
	e, err := NewExporter(models.ExportConfig{
		Format: FormatJSON, Destination: DestinationLocal, OutputPath: dir, OutputFolder: "export", Limit: 100,
	}, drivers, nurses, nil, nil)
	require.NoError(t, err)

	files, err := e.Export(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, File{Dataset: DatasetDriverUpdates, Location: filepath.Join(dir, "export", "driver_updates.json"), Records: 1}, files[0])

	data, err := os.ReadFile(filepath.Join(dir, "export", "nurse_updates.json"))
	require.NoError(t, err)
	var rows []models.NurseUpdateRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "n2", rows[0].ID)
	assert.Equal(t, created.UnixMilli(), rows[0].CreatedAt)
}

func TestExporter_LocalParquet(t *testing.T) {
	drivers, nurses := seededRepos(t)
	dir := t.TempDir()
	e, err := NewExporter(models.ExportConfig{
		Format: FormatParquet, Destination: DestinationLocal, OutputPath: dir, OutputFolder: "export", Limit: 100,
	}, drivers, nurses, nil, nil)
	require.NoError(t, err)

	_, err = e.Export(context.Background())
	require.NoError(t, err)

	fr, err := local.NewLocalFileReader(filepath.Join(dir, "export", "nurse_updates.parquet"))
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(models.NurseUpdateRow), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.EqualValues(t, 2, pr.GetNumRows())
	rows := make([]models.NurseUpdateRow, 2)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, "B. Das", rows[0].PatientName)
	assert.EqualValues(t, 95, rows[0].SeverityScore)
	assert.Equal(t, "fever", rows[1].Notes)
}

type memoryObject struct {
	buf    bytes.Buffer
	closed bool
}

func (o *memoryObject) Write(p []byte) (int, error) { return o.buf.Write(p) }
func (o *memoryObject) Close() error                { o.closed = true; return nil }

type memoryBucket struct {
	mu      sync.Mutex
	objects map[string]*memoryObject
}

func (b *memoryBucket) NewWriter(_ context.Context, bucket, objectPath string) (cloudwriter.CloudWriter, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := &memoryObject{}
	b.objects[bucket+"/"+objectPath] = o
	return o, nil
}

func TestExporter_Cloud(t *testing.T) {
	drivers, nurses := seededRepos(t)
	bucket := &memoryBucket{objects: map[string]*memoryObject{}}
	e, err := NewExporter(models.ExportConfig{
		Format: FormatJSON, Destination: DestinationCloud, OutputFolder: "daily", Limit: 100,
		CloudStorage: models.CloudStorageConfig{Provider: "s3", BucketName: "ems"},
	}, drivers, nurses, bucket, nil)
	require.NoError(t, err)

	files, err := e.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "s3://ems/daily/nurse_updates.json", files[1].Location)

	obj := bucket.objects["ems/daily/driver_updates.json"]
	require.NotNil(t, obj)
	assert.True(t, obj.closed)
	assert.Contains(t, obj.buf.String(), `"fromLocation": "Depot"`)
}

func TestExporter_CloudParquet(t *testing.T) {
	drivers, nurses := seededRepos(t)
	bucket := &memoryBucket{objects: map[string]*memoryObject{}}
	e, err := NewExporter(models.ExportConfig{
		Format: FormatParquet, Destination: DestinationCloud, OutputFolder: "daily", Limit: 100,
		CloudStorage: models.CloudStorageConfig{Provider: "s3", BucketName: "ems"},
	}, drivers, nurses, bucket, nil)
	require.NoError(t, err)

	_, err = e.Export(context.Background())
	require.NoError(t, err)

	obj := bucket.objects["ems/daily/nurse_updates.parquet"]
	require.NotNil(t, obj)
	assert.True(t, obj.closed)
	assert.True(t, bytes.HasPrefix(obj.buf.Bytes(), []byte("PAR1")))
}

func TestNewExporter_Rejects(t *testing.T) {
	drivers, nurses := seededRepos(t)

	_, err := NewExporter(models.ExportConfig{Format: "csv", Destination: DestinationLocal}, drivers, nurses, nil, nil)
	assert.Error(t, err)
	_, err = NewExporter(models.ExportConfig{Format: FormatJSON, Destination: DestinationCloud}, drivers, nurses, nil, nil)
	assert.Error(t, err)
}
