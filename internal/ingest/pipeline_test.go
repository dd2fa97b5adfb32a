package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ritikraj007/FraudDetectionAI/internal/datasource"
)

func newTestPipeline(t *testing.T) (*Pipeline, *datasource.Registry, *datasource.Catalog, string) {
	t.Helper()
	dir := t.TempDir()

	registry, err := datasource.NewRegistry(dir)
	require.NoError(t, err)
	catalog, err := datasource.NewCatalog(dir)
	require.NoError(t, err)

	return NewPipeline(dir, registry, catalog), registry, catalog, dir
}

func TestIngestSuccess(t *testing.T) {
	p, registry, catalog, dir := newTestPipeline(t)

	csvData := []byte(`user_id,type,timestamp,duration,location,is_fraud
+15551111111,call,2024-03-15 10:00:00,60,Delhi,false
+15552222222,sms,2024-03-15 11:00:00,0,Mumbai,true
`)
	result, err := p.Ingest("activity.csv", csvData)
	require.NoError(t, err)

	assert.Equal(t, "activity.csv", result.Filename)
	assert.Equal(t, 2, result.RecordCount)
	assert.Equal(t, 0, result.Dropped)

	// Raw file saved to the upload dir
	saved, err := os.ReadFile(filepath.Join(dir, "activity.csv"))
	require.NoError(t, err)
	assert.Equal(t, csvData, saved)

	// Batch activated and selector flipped
	assert.Equal(t, datasource.SourceCSV, registry.CurrentSource())
	batch := registry.Batch()
	require.Len(t, batch, 2)
	assert.Equal(t, "+15551111111", batch[0].UserID)
	assert.True(t, batch[1].IsSpamOrFraud)

	// Catalog entry upserted as active
	files := catalog.List()
	require.Len(t, files, 1)
	assert.Equal(t, "activity.csv", files[0].Name)
	assert.Equal(t, 2, files[0].RecordCount)
	assert.Equal(t, int64(len(csvData)), files[0].Size)
	assert.Equal(t, "active", files[0].Status)
}

func TestIngestPersistsBeforeReturning(t *testing.T) {
	p, _, _, dir := newTestPipeline(t)

	_, err := p.Ingest("a.csv", []byte("user_id\nu1\n"))
	require.NoError(t, err)

	// A fresh registry recovers the batch and selector from disk
	recovered, err := datasource.NewRegistry(dir)
	require.NoError(t, err)
	assert.Equal(t, datasource.SourceCSV, recovered.CurrentSource())
	assert.Len(t, recovered.Batch(), 1)
}

func TestIngestReplacesBatchWholesale(t *testing.T) {
	p, registry, _, _ := newTestPipeline(t)

	_, err := p.Ingest("first.csv", []byte("user_id\nu1\nu2\nu3\n"))
	require.NoError(t, err)
	require.Len(t, registry.Batch(), 3)

	_, err = p.Ingest("second.csv", []byte("user_id\nu9\n"))
	require.NoError(t, err)

	batch := registry.Batch()
	require.Len(t, batch, 1)
	assert.Equal(t, "u9", batch[0].UserID)
}

func TestIngestStructuralErrorAbortsUntouched(t *testing.T) {
	p, registry, catalog, _ := newTestPipeline(t)

	_, err := p.Ingest("good.csv", []byte("user_id\nu1\n"))
	require.NoError(t, err)

	// Unclosed quote is a structural CSV error
	_, err = p.Ingest("bad.csv", []byte("user_id,location\nu2,\"broken\n"))
	require.Error(t, err)

	// Previous batch, selector and catalog survive
	assert.Equal(t, datasource.SourceCSV, registry.CurrentSource())
	require.Len(t, registry.Batch(), 1)
	assert.Equal(t, "u1", registry.Batch()[0].UserID)

	files := catalog.List()
	require.Len(t, files, 1)
	assert.Equal(t, "good.csv", files[0].Name)
}

func TestIngestSkipsEmptyLines(t *testing.T) {
	p, _, _, _ := newTestPipeline(t)

	result, err := p.Ingest("gaps.csv", []byte("user_id,location\nu1,Delhi\n\n\nu2,Pune\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordCount)
}

func TestIngestHeaderOnlyActivatesEmptyBatch(t *testing.T) {
	p, registry, _, _ := newTestPipeline(t)

	result, err := p.Ingest("empty.csv", []byte("user_id,type\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.RecordCount)

	// Selector still flips; readers fall back on the empty batch
	assert.Equal(t, datasource.SourceCSV, registry.CurrentSource())
	assert.Empty(t, registry.Batch())
}

func TestIngestSanitizesFilename(t *testing.T) {
	p, _, catalog, dir := newTestPipeline(t)

	_, err := p.Ingest("../../evil.csv", []byte("user_id\nu1\n"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "evil.csv"))
	assert.NoError(t, err)
	require.Len(t, catalog.List(), 1)
	assert.Equal(t, "evil.csv", catalog.List()[0].Name)
}
