package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestKeyFamily(t *testing.T) {
	cases := map[string]string{
		"community:category:list":                               "community:category:list",
		"community:topic:6f1c2a1e-8a0b-4bb2-9b65-4f1b8e0c1d2a": "community:topic",
		"community:topic:list:all:20:0":                         "community:topic:list",
		"community:topic:hot:10":                                "community:topic:hot",
		"community:comment:list:TOPIC:abc":                      "community:comment:list",
		"community:topic:list:*":                                "community:topic:list",
		"":                                                      "unknown",
	}
	for key, want := range cases {
		assert.Equal(t, want, KeyFamily(key), key)
	}
}

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheRequests.WithLabelValues("community:category:list", "hit"))
	CacheHit("community:category:list")
	after := testutil.ToFloat64(cacheRequests.WithLabelValues("community:category:list", "hit"))
	assert.Equal(t, before+1, after)
}

func TestHTTPFinished_UnmatchedRoute(t *testing.T) {
	HTTPStarted()
	HTTPFinished("get", "", 404, 3*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}
