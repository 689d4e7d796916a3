package daemon

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sonarpi/sonar/pkg/hcsr04"
)

var (
	loopInterval = time.Second
	loopRecorder = NewCycleRecorder(60, time.Second)
	// wide enough to absorb one late cycle before complaining
	continuousCycleThreshold = 12 * time.Second

	out io.Writer = os.Stdout
)

// invalidReading is the sentinel printed when a measurement fails. Both
// failure kinds collapse to it on the console; they stay distinct in logs.
const invalidReading = -1.0

// infiniteLoop runs forever and measures once per poll interval,
// which is called by the daemon.
func infiniteLoop() {
	// Pulse-width timing is microsecond-scale; keep the loop from
	// migrating between OS threads mid-measurement.
	runtime.LockOSThread()

	for {
		measureCycle()
		time.Sleep(loopInterval)
	}
}

// measureCycle is one iteration of the measure loop: bookkeeping,
// one measurement, one console line.
func measureCycle() {
	checkMissedCycles()
	loopRecorder.AddRecordNow()
	measureOnce(sensor, out)
}

// measureOnce performs a single measurement and writes the console line.
// Failures are non-fatal: the reading collapses to the sentinel and the next
// cycle retries.
func measureOnce(s *hcsr04.Sensor, w io.Writer) float64 {
	distance, err := s.Measure()
	if err != nil {
		distance = invalidReading
		switch {
		case errors.Is(err, hcsr04.ErrTimeout):
			logrus.WithError(err).Debug("no echo within the timeout window")
		case errors.Is(err, hcsr04.ErrOutOfRange):
			logrus.WithError(err).Debug("reading outside the accepted envelope")
		default:
			logrus.WithError(err).Error("measurement failed")
		}
	}

	fmt.Fprintln(w, formatReading(distance))
	return distance
}

// formatReading renders the fixed console line.
func formatReading(distance float64) string {
	return fmt.Sprintf("Distance: %.2f cm", distance)
}

// checkMissedCycles reports whether recent measure cycles were skipped, e.g.
// because the system was suspended or the process was starved. Diagnostic
// only; readings are not adjusted.
func checkMissedCycles() bool {
	cycleCount := loopRecorder.GetRecordsIn(continuousCycleThreshold)
	expectedCycleCount := int(continuousCycleThreshold / loopInterval)
	minCycleCount := expectedCycleCount - 1

	if cycleCount < minCycleCount {
		logrus.WithFields(logrus.Fields{
			"cycleCount":         cycleCount,
			"expectedCycleCount": expectedCycleCount,
			"minCycleCount":      minCycleCount,
			"recentCycles":       formatRelativeTimes(loopRecorder.GetLastRecords(continuousCycleThreshold)),
		}).Debug("possibly missed measure cycles")
		return true
	}
	return false
}

func formatRelativeTimes(times []time.Time) []string {
	var timesString []string
	for _, t := range times {
		timesString = append(timesString, time.Since(t).String())
	}
	return timesString
}
