package predictor_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-predictor/internal/metrics"
	"college-predictor/internal/models"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/services/predictor"
)

func loadedCatalog(t *testing.T, records []models.Record) *catalog.Catalog {
	t.Helper()
	c := catalog.New(&catalog.StaticLoader{Records: records})
	_, err := c.Reload(context.Background())
	require.NoError(t, err)
	return c
}

func TestService_Predict(t *testing.T) {
	m := metrics.New()
	svc := predictor.NewService(loadedCatalog(t, scenarioRecords()), predictor.WithMetrics(m))

	result, err := svc.Predict(context.Background(), models.NewQuery(90, "open"))
	require.NoError(t, err)

	assert.NotEmpty(t, result.RequestID)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 85.0, result.WindowLow)
	assert.Equal(t, 92.0, result.WindowHigh)
	assert.Equal(t, map[string]int{"exact": 1, "safe": 1, "near_miss": 1}, result.Counts)
	require.Len(t, result.Groups, 2)
	assert.Equal(t, "CollegeA", result.Groups[0].CollegeName)
	assert.False(t, result.SnapshotAt.IsZero())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("matched")))
}

func TestService_PredictEmptyIsNotError(t *testing.T) {
	m := metrics.New()
	svc := predictor.NewService(loadedCatalog(t, scenarioRecords()), predictor.WithMetrics(m))

	result, err := svc.Predict(context.Background(), models.NewQuery(40, "OPEN"))
	require.NoError(t, err)

	assert.True(t, result.IsEmpty())
	assert.Empty(t, result.Groups)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues("empty")))
}

func TestService_PredictRejectsInvalidQuery(t *testing.T) {
	m := metrics.New()
	svc := predictor.NewService(loadedCatalog(t, scenarioRecords()), predictor.WithMetrics(m))

	_, err := svc.Predict(context.Background(), models.NewQuery(90, "OPEN", models.WithLowerTolerance(-1)))
	assert.ErrorIs(t, err, models.ErrNegativeTolerance)

	_, err = svc.Predict(context.Background(), models.NewQuery(120, "OPEN"))
	assert.ErrorIs(t, err, models.ErrInvalidTargetPercentile)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Queries.WithLabelValues("error")))
}

func TestService_PredictBeforeLoad(t *testing.T) {
	svc := predictor.NewService(catalog.New(&catalog.StaticLoader{}))

	_, err := svc.Predict(context.Background(), models.NewQuery(90, "OPEN"))
	assert.ErrorIs(t, err, catalog.ErrNotLoaded)
}

func TestService_PredictUsesOrder(t *testing.T) {
	svc := predictor.NewService(loadedCatalog(t, scenarioRecords()), predictor.WithOrder(predictor.OrderLabel))

	result, err := svc.Predict(context.Background(), models.NewQuery(90, "OPEN"))
	require.NoError(t, err)

	assert.Equal(t, predictor.OrderLabel, svc.Order())
	assert.Equal(t, []string{"CollegeA/CS=exact", "CollegeB/CS=near_miss", "CollegeA/ME=safe"}, summarize(result.Matches))
}

func TestService_PredictSeesSwappedSnapshot(t *testing.T) {
	c := loadedCatalog(t, scenarioRecords())
	svc := predictor.NewService(c)

	before, err := svc.Predict(context.Background(), models.NewQuery(90, "OPEN"))
	require.NoError(t, err)

	c.Swap([]models.Record{
		{CollegeName: "CollegeC", Branch: "IT", Category: "OPEN", Rank: 9, Percentile: 89},
	}, "test")

	after, err := svc.Predict(context.Background(), models.NewQuery(90, "OPEN"))
	require.NoError(t, err)

	assert.Equal(t, 3, before.Total)
	assert.Equal(t, 1, after.Total)
	assert.Equal(t, "CollegeC", after.Matches[0].Record.CollegeName)
}
