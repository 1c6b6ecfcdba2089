package link

import (
	"fmt"

	metrics "github.com/rcrowley/go-metrics"
	uuid "github.com/satori/go.uuid"
)

type linkStats struct {
	// track byte states
	bytesSent     metrics.Counter
	bytesReceived metrics.Counter

	// track lifecycle states
	numEofs      metrics.Counter
	numShutdowns metrics.Counter
	numResets    metrics.Counter
}

func newLinkStats(id uuid.UUID) *linkStats {
	r := metrics.DefaultRegistry

	return &linkStats{
		bytesSent: metrics.NewRegisteredCounter(
			newLinkMetricName(id, "link.BytesSent"), r),
		bytesReceived: metrics.NewRegisteredCounter(
			newLinkMetricName(id, "link.BytesReceived"), r),

		numEofs: metrics.NewRegisteredCounter(
			newLinkMetricName(id, "link.NumEofs"), r),
		numShutdowns: metrics.NewRegisteredCounter(
			newLinkMetricName(id, "link.NumShutdowns"), r),
		numResets: metrics.NewRegisteredCounter(
			newLinkMetricName(id, "link.NumResets"), r)}
}

func newLinkMetricName(id uuid.UUID, name string) string {
	return fmt.Sprintf("-- %v --: %s", id, name)
}
