package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordSubmission(t *testing.T) {
	before := testutil.ToFloat64(SubmissionsTotal.WithLabelValues("json"))
	RecordSubmission("json", 0.3)
	RecordSubmission("json", 1.2)
	assert.Equal(t, before+2, testutil.ToFloat64(SubmissionsTotal.WithLabelValues("json")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(SubmissionDuration), 1)
}
