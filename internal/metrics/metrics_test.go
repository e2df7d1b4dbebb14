package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if snapshotPagesTotal == nil || snapshotRunsTotal == nil || httpRequestsTotal == nil {
		t.Fatal("collectors were not initialized")
	}
}

func TestObservePage(t *testing.T) {
	Init()
	before := testutil.ToFloat64(snapshotPagesTotal.WithLabelValues("about", PageGenerated))
	bytesBefore := testutil.ToFloat64(snapshotPageBytesTotal.WithLabelValues("about"))

	ObservePage("about", PageGenerated, 512)
	ObservePage("about", PageUploadError, 512)

	if got := testutil.ToFloat64(snapshotPagesTotal.WithLabelValues("about", PageGenerated)); got != before+1 {
		t.Errorf("expected generated pages to be %f, got %f", before+1, got)
	}
	if got := testutil.ToFloat64(snapshotPageBytesTotal.WithLabelValues("about")); got != bytesBefore+512 {
		t.Errorf("expected uploaded bytes to be %f, got %f", bytesBefore+512, got)
	}
}

func TestObserveRun(t *testing.T) {
	Init()
	before := testutil.ToFloat64(snapshotRunsTotal.WithLabelValues(RunRejected))

	ObserveRun(RunRejected, 0)
	ObserveRun(RunCompleted, 2*time.Second)

	if got := testutil.ToFloat64(snapshotRunsTotal.WithLabelValues(RunRejected)); got != before+1 {
		t.Errorf("expected rejected runs to be %f, got %f", before+1, got)
	}
	if val := testutil.CollectAndCount(snapshotRunDurationSeconds); val != 1 {
		t.Errorf("expected one run duration series, got %d", val)
	}

	IncRunsInProgress()
	if got := testutil.ToFloat64(snapshotRunsInProgress); got < 1 {
		t.Errorf("expected a run in progress, got %f", got)
	}
	DecRunsInProgress()
}

func TestObserveFetchError(t *testing.T) {
	ObserveFetchError("blog_posts")
	if got := testutil.ToFloat64(snapshotFetchErrorsTotal.WithLabelValues("blog_posts")); got < 1 {
		t.Errorf("expected fetch error to be counted, got %f", got)
	}
}
