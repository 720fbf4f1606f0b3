// Package main provides a performance benchmarking tool for the chartaxis CLI.
// It generates replay scripts of increasing size for several update patterns,
// runs each script multiple times, and reports the average replay time as CSV
// for performance analysis and documentation.
//
// Prerequisites:
// - chartaxis binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where generated scripts are written (default: temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/huangsam/chartaxis/internal/script"
	"github.com/huangsam/chartaxis/schema"
	"gopkg.in/yaml.v3"
)

// BenchmarkResult holds the result of a benchmark workload.
type BenchmarkResult struct {
	Workload string
	Bars     int
	Steps    int
	AvgTime  string
	MinTime  string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	BarSizes []int
	Series   int
}

// workload builds a replay script for a number of bars.
type workload struct {
	name  string
	build func(bars, series int) script.Script
}

var workloads = []workload{
	{name: "bulk", build: bulkScript},
	{name: "streaming", build: streamingScript},
	{name: "historical", build: historicalScript},
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "chartaxis-benchmark-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = os.RemoveAll(dir) }()
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:  workDir,
		Timeout:  5 * time.Minute,
		Runs:     3,
		BarSizes: []int{1_000, 10_000, 50_000},
		Series:   4,
	}

	if _, err := exec.LookPath("chartaxis"); err != nil {
		fmt.Printf("Prerequisites check failed: chartaxis binary not found in PATH\n")
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every workload for every configured size
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d workloads, sizes %v, %d series, %d runs, %v timeout\n",
		len(workloads), config.BarSizes, config.Series, config.Runs, config.Timeout)

	for _, w := range workloads {
		for _, bars := range config.BarSizes {
			sc := w.build(bars, config.Series)
			path := filepath.Join(config.WorkDir, fmt.Sprintf("%s_%d.yaml", w.name, bars))
			if err := writeScript(path, sc); err != nil {
				fmt.Printf("  Skipping %s (%d bars): %v\n", w.name, bars, err)
				continue
			}

			fmt.Printf("Running %s with %d bars (%d steps)\n", w.name, bars, len(sc.Steps))
			times := runBenchmark(config, path)
			result := BenchmarkResult{Workload: w.name, Bars: bars, Steps: len(sc.Steps), AvgTime: "TIMEOUT", MinTime: "TIMEOUT"}
			if len(times) > 0 {
				var sum float64
				lowest := times[0]
				for _, t := range times {
					sum += t
					lowest = min(lowest, t)
				}
				result.AvgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
				result.MinTime = fmt.Sprintf("%.3fs", lowest)
			}
			fmt.Printf("  Average: %s, Best: %s\n", result.AvgTime, result.MinTime)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmark replays a script several times and returns the successful run times
func runBenchmark(config BenchmarkConfig, path string) []float64 {
	args := []string{"replay", path, "--store-backend", "none", "--output", "json", "--output-file", os.DevNull}

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()
		cmd := exec.Command("chartaxis", args...)

		done := make(chan error, 1)
		go func() {
			done <- cmd.Run()
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}
	return times
}

// bulkScript sets every series in one step each.
func bulkScript(bars, series int) script.Script {
	sc := newScript(series)
	for s := range series {
		items := make([]schema.DataItem, bars)
		for i := range items {
			items[i] = barAt(i, s)
		}
		sc.Steps = append(sc.Steps, script.Step{Op: script.OpSet, Series: seriesName(s), Data: items})
	}
	return sc
}

// streamingScript seeds half of the bars and appends the rest one update at a time.
func streamingScript(bars, series int) script.Script {
	sc := newScript(series)
	seed := bars / 2
	for s := range series {
		items := make([]schema.DataItem, seed)
		for i := range items {
			items[i] = barAt(i, s)
		}
		sc.Steps = append(sc.Steps, script.Step{Op: script.OpSet, Series: seriesName(s), Data: items})
	}
	for i := seed; i < bars; i++ {
		s := i % series
		item := barAt(i, s)
		sc.Steps = append(sc.Steps, script.Step{Op: script.OpUpdate, Series: seriesName(s), Item: &item})
	}
	return sc
}

// historicalScript seeds the even bars and backfills the odd ones as historical updates.
func historicalScript(bars, series int) script.Script {
	sc := newScript(series)
	for s := range series {
		items := make([]schema.DataItem, 0, bars/2+1)
		for i := 0; i < bars; i += 2 {
			items = append(items, barAt(i, s))
		}
		sc.Steps = append(sc.Steps, script.Step{Op: script.OpSet, Series: seriesName(s), Data: items})
	}
	for i := 1; i < bars; i += 2 {
		s := i % series
		item := barAt(i, s)
		sc.Steps = append(sc.Steps, script.Step{Op: script.OpUpdate, Series: seriesName(s), Item: &item, Historical: true})
	}
	return sc
}

func newScript(series int) script.Script {
	sc := script.Script{Axis: schema.IndexAxis}
	for s := range series {
		sc.Series = append(sc.Series, script.SeriesDef{Name: seriesName(s), Kind: schema.LineSeries, Pane: s % 2})
	}
	return sc
}

// barAt offsets each series by a fraction so series interleave on the axis.
func barAt(i, s int) schema.DataItem {
	return schema.SingleValue(float64(i)+float64(s)/10, float64(i%97))
}

func seriesName(s int) string {
	return fmt.Sprintf("s%d", s)
}

func writeScript(path string, sc script.Script) error {
	data, err := yaml.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to encode script: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/chartaxis_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"workload", "bars", "steps", "avg_time", "min_time"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Workload, fmt.Sprint(result.Bars), fmt.Sprint(result.Steps), result.AvgTime, result.MinTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, w := range workloads {
		fmt.Printf("%s:\n", w.name)
		for _, result := range results {
			if result.Workload == w.name {
				fmt.Printf("  %8d bars: Average: %s, Best: %s\n", result.Bars, result.AvgTime, result.MinTime)
			}
		}
	}
}
