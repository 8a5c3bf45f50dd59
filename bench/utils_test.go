package chash_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/theflywheel/chash"
)

// BenchmarkMetrics represents metrics for a single benchmark
type BenchmarkMetrics struct {
	Name       string             `json:"name"`
	Category   string             `json:"category"`
	Operations int                `json:"operations"`
	Buckets    int                `json:"buckets"`
	NsPerOp    float64            `json:"ns_per_op"`
	Metrics    map[string]float64 `json:"metrics"`
}

// BenchmarkSummary represents all benchmark results of one run
type BenchmarkSummary struct {
	Timestamp string             `json:"timestamp"`
	GoVersion string             `json:"go_version"`
	Results   []BenchmarkMetrics `json:"results"`
}

// recordChainStats stores the average and longest chain length of t.
func recordChainStats[K chash.Key, V any](t *chash.Table[K, V], metrics *BenchmarkMetrics) {
	longest := 0
	for i := 0; i < t.BucketCount(); i++ {
		n := 0
		t.ForEachInBucket(i, func(*chash.Node[K, V]) bool {
			n++
			return true
		})
		if n > longest {
			longest = n
		}
	}
	metrics.Metrics["avg_chain"] = float64(t.Len()) / float64(t.BucketCount())
	metrics.Metrics["max_chain"] = float64(longest)
}

// recordTrackerStats stores the bytes charged to tracker.
func recordTrackerStats(tracker *chash.Tracker, metrics *BenchmarkMetrics) {
	bytes, blocks := tracker.Outstanding()
	metrics.Metrics["tracked_mb"] = float64(bytes) / (1024 * 1024)
	metrics.Metrics["tracked_blocks"] = float64(blocks)
	if metrics.Operations > 0 {
		metrics.Metrics["bytes_per_key"] = float64(bytes) / float64(metrics.Operations)
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.Metrics["heap_alloc_mb"] = float64(m.Alloc) / (1024 * 1024)
}

// saveBenchmarkResult appends a result to benchmark_history/<resultsFile>
// at the repository root.
func saveBenchmarkResult(metrics BenchmarkMetrics, resultsFile string) error {
	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	benchmarkDir := filepath.Join(filepath.Dir(currentDir), "benchmark_history")
	if err := os.MkdirAll(benchmarkDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	summary := BenchmarkSummary{
		Timestamp: time.Now().Format(time.RFC3339),
		GoVersion: runtime.Version(),
	}

	latestFile := filepath.Join(benchmarkDir, resultsFile)
	if existing, err := os.ReadFile(latestFile); err == nil {
		var previous BenchmarkSummary
		if err := json.Unmarshal(existing, &previous); err == nil {
			summary.Results = previous.Results
		}
	}
	summary.Results = append(summary.Results, metrics)

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}
	if err := os.WriteFile(latestFile, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing file: %w", err)
	}

	fmt.Printf("Benchmark results saved to: %s\n", latestFile)
	return nil
}
