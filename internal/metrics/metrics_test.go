package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStoreLoad(10 * time.Millisecond)
	c.RecordStoreLoad(20 * time.Millisecond)
	c.RecordStoreSave(5 * time.Millisecond)
	c.RecordStoreFault("load")
	c.RecordCacheHit()
	c.RecordRegistration()
	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordFriendRequest("sent")

	if got := testutil.ToFloat64(c.storeLoads); got != 2 {
		t.Errorf("store loads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.storeSaves); got != 1 {
		t.Errorf("store saves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.storeFaults.WithLabelValues("load")); got != 1 {
		t.Errorf("store faults(load) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.cacheHits); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues("success")); got != 1 {
		t.Errorf("logins(success) = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues("failure")); got != 1 {
		t.Errorf("logins(failure) = %v, want 1", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRegistration()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "meetman_registrations_total 1") {
		t.Errorf("metrics output missing registration counter:\n%s", body)
	}
}
