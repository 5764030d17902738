package monitor

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"putransform/internal/transform"
)

func TestObserveRecordsFinishedTransforms(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.Observe(transform.Progress{Name: "rt"})
	m.Observe(transform.Progress{Name: "rt", Done: true, AUC: 0.81, Elapsed: 2 * time.Second})

	assert.Equal(t, 0.81, testutil.ToFloat64(m.CandidateAUC.WithLabelValues("rt")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TrainDuration))
}

func TestFinished(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.Finished(transform.Report{Best: "svm_1"}, nil)
	m.Finished(transform.Report{Best: "svm_1"}, nil)
	m.Finished(transform.Report{}, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Selections.WithLabelValues("svm_1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures))
}
