package daemon

import (
	"sync"
	"time"
)

// CycleRecorder records the last N measure cycle times, so the daemon can
// tell whether cycles ran on schedule or were skipped (system sleep,
// scheduler stalls).
type CycleRecorder struct {
	MaxRecordCount int
	CycleTimes     []time.Time

	interval time.Duration
	mu       *sync.Mutex
}

// NewCycleRecorder returns a CycleRecorder for a loop running at the given
// interval.
func NewCycleRecorder(maxRecordCount int, interval time.Duration) *CycleRecorder {
	return &CycleRecorder{
		MaxRecordCount: maxRecordCount,
		CycleTimes:     make([]time.Time, 0),
		interval:       interval,
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *CycleRecorder) AddRecordNow() {
	r.AddRecord(time.Now())
}

// AddRecord adds a new record.
func (r *CycleRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Round to strip the monotonic clock reading. Otherwise time.Since
	// misbehaves across system sleeps.
	t = t.Round(0)

	if len(r.CycleTimes) >= r.MaxRecordCount {
		r.CycleTimes = r.CycleTimes[1:]
	}
	r.CycleTimes = append(r.CycleTimes, t)
}

// GetRecordsIn returns the number of continuous records in the last duration.
// Continuous records are records whose spacing never exceeds the loop
// interval by more than a second.
func (r *CycleRecorder) GetRecordsIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The most recent record must itself be fresh.
	if len(r.CycleTimes) > 0 && time.Since(r.CycleTimes[len(r.CycleTimes)-1]) >= r.interval+time.Second {
		return 0
	}

	count := 0
	for i := len(r.CycleTimes) - 1; i >= 0; i-- {
		record := r.CycleTimes[i]
		if time.Since(record) > last {
			break
		}

		theRecordAfter := record
		if i+1 < len(r.CycleTimes) {
			theRecordAfter = r.CycleTimes[i+1]
		}

		if theRecordAfter.Sub(record) >= r.interval+time.Second {
			break
		}
		count++
	}

	return count
}

// GetLastRecords returns the records within the last duration, newest first.
func (r *CycleRecorder) GetLastRecords(last time.Duration) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.CycleTimes) == 0 {
		return nil
	}

	var records []time.Time
	for i := len(r.CycleTimes) - 1; i >= 0; i-- {
		record := r.CycleTimes[i]
		if time.Since(record) > last {
			break
		}
		records = append(records, record)
	}

	return records
}

// GetLastRecord returns the most recent record, or the zero time when no
// cycle has run yet.
func (r *CycleRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.CycleTimes) == 0 {
		return time.Time{}
	}

	return r.CycleTimes[len(r.CycleTimes)-1]
}
