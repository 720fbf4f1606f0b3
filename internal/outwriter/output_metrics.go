package outwriter

import (
	"fmt"
	"io"

	"github.com/huangsam/chartaxis/internal/telemetry"
)

// WriteMetrics writes the gathered session metrics in the Prometheus text format.
// The file can be picked up by a node exporter textfile collector.
func WriteMetrics(metrics *telemetry.Metrics, outputFile string) error {
	if err := writeWithFile(outputFile, func(w io.Writer) error {
		return metrics.WriteText(w)
	}, "Wrote metrics"); err != nil {
		return fmt.Errorf("error writing metrics: %w", err)
	}
	return nil
}
