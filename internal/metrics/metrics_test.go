package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/foodmap-client/internal/metrics"
)

func TestCollector_BackendRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordBackendRequest("/poi-data/search", metrics.OutcomeSuccess, 20*time.Millisecond)
	c.RecordBackendRequest("/poi-data/search", metrics.OutcomeSuccess, 40*time.Millisecond)
	c.RecordBackendRequest("/category/get-all", metrics.OutcomeTransport, time.Second)

	count, err := testutil.GatherAndCount(reg, "foodmap_backend_requests_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCollector_CacheAndSession(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.NewCollector(reg)

	c.RecordCacheLookup("shops", true)
	c.RecordCacheLookup("shops", true)
	c.RecordCacheLookup("shops", false)
	c.RecordSessionInvalidated("5001")
	c.RecordMapLoad("success")

	families, err := reg.Gather()
	assert.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "|" + lp.GetValue()
			}
			values[key] = m.GetCounter().GetValue()
		}
	}

	assert.Equal(t, 2.0, values["foodmap_cache_lookups_total|shops|hit"])
	assert.Equal(t, 1.0, values["foodmap_cache_lookups_total|shops|miss"])
	assert.Equal(t, 1.0, values["foodmap_session_invalidations_total|5001"])
	assert.Equal(t, 1.0, values["foodmap_map_sdk_loads_total|success"])
}
