package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-predictor/internal/config"
	"college-predictor/internal/models"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/services/predictor"
)

const sampleCSV = `College Name,Branch,Category,Rank,Percentile
CollegeA,CS,OPEN,100,90.00
CollegeB,CS,OPEN,50,91.50
`

func fileConfig(path string) *config.Config {
	return &config.Config{
		CutoffSource:   config.SourceFile,
		CutoffCSVPath:  path,
		DefaultBuffer:  2.0,
		LowerTolerance: 5.0,
		StatusOrder:    "severity",
	}
}

func TestNew_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutoffs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	a, err := New(context.Background(), fileConfig(path))
	require.NoError(t, err)
	defer a.Close()

	snap, err := a.Catalog.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, "file://"+path, snap.Source())
	assert.Nil(t, a.DB)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Reloads.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(a.Metrics.SnapshotRecords))

	result, err := a.Predictor.Predict(context.Background(), models.NewQuery(90, "open"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestNew_MissingFileIsFatal(t *testing.T) {
	_, err := New(context.Background(), fileConfig(filepath.Join(t.TempDir(), "missing.csv")))
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrSourceNotFound)
}

func TestNew_UnknownSource(t *testing.T) {
	cfg := fileConfig("x.csv")
	cfg.CutoffSource = "ftp"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewWithLoader_Order(t *testing.T) {
	cfg := fileConfig("unused.csv")
	cfg.StatusOrder = "label"

	a, err := NewWithLoader(context.Background(), cfg, &catalog.StaticLoader{}, nil)
	require.NoError(t, err)
	assert.Equal(t, predictor.OrderLabel, a.Predictor.Order())

	cfg.StatusOrder = "random"
	_, err = NewWithLoader(context.Background(), cfg, &catalog.StaticLoader{}, nil)
	assert.Error(t, err)
}

func TestNewWithLoader_FailedLoad(t *testing.T) {
	_, err := NewWithLoader(context.Background(), fileConfig("unused.csv"),
		&catalog.StaticLoader{Err: errors.New("boom")}, nil)
	assert.Error(t, err)
}

func TestStartBackground_Disabled(t *testing.T) {
	a, err := NewWithLoader(context.Background(), fileConfig("unused.csv"), &catalog.StaticLoader{}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	a.StartBackground(ctx)
	cancel()

	assert.Equal(t, uint64(1), a.Catalog.Snapshot().Version())
}
