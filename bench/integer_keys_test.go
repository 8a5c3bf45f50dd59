// Package chash_test provides scale benchmarks for the chained hash table.
//
// This file measures integer keys over a fixed bucket count:
//   - Insertion rate
//   - Lookup rate over a scattered sample and over every key
//   - Chain lengths and tracked memory per key
package chash_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/theflywheel/chash"
)

// BenchmarkTenThousandIntegerKeys inserts ten thousand sequential integer
// keys into 1024 buckets, then looks them up.
func BenchmarkTenThousandIntegerKeys(b *testing.B) {
	fmt.Printf("BenchmarkTenThousandIntegerKeys started execution, b.N = %d\n", b.N)

	// Force benchmark to run only once regardless of -benchtime flag
	b.N = 1
	b.ResetTimer()
	b.StopTimer()

	const (
		buckets          = 1024
		numKeys          = 10_000
		progressInterval = 1_000
	)

	tracker := &chash.Tracker{}
	table, err := chash.New[uint32, uint64](buckets, chash.IntegerKey, chash.WithAllocator(tracker))
	if err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}
	defer table.Destroy()

	metrics := BenchmarkMetrics{
		Name:       "TenThousandIntegerKeys",
		Category:   "scale",
		Operations: numKeys,
		Buckets:    buckets,
		Metrics:    make(map[string]float64),
	}

	b.Logf("Starting insertion of %d keys...", numKeys)
	b.StartTimer()
	writeStart := time.Now()

	for i := 0; i < numKeys; i++ {
		if err := table.Add(uint32(i), uint64(i)*100); err != nil {
			b.Fatalf("Failed to insert key %d: %v", i, err)
		}

		if (i+1)%progressInterval == 0 {
			b.StopTimer()
			b.Logf("Inserted %d keys...", i+1)
			b.StartTimer()
		}
	}

	b.StopTimer()
	writeTime := time.Since(writeStart)
	metrics.Metrics["insertion_rate"] = float64(numKeys) / writeTime.Seconds()
	b.Logf("Time to insert %d keys: %v", numKeys, writeTime)

	sampleSize := 1_000
	out := make([]*chash.Node[uint32, uint64], 1)

	b.StartTimer()
	randomReadStart := time.Now()

	for i := 0; i < sampleSize; i++ {
		keyID := uint32((i*31 + 17) % numKeys)
		if n := table.Find(keyID, out); n != 1 {
			b.Fatalf("Expected one match for key %d, got %d", keyID, n)
		}
		if out[0].Value() != uint64(keyID)*100 {
			b.Fatalf("Value mismatch for key %d: got %d", keyID, out[0].Value())
		}
	}

	b.StopTimer()
	randomReadTime := time.Since(randomReadStart)
	metrics.Metrics["random_lookup_rate"] = float64(sampleSize) / randomReadTime.Seconds()

	b.StartTimer()
	seqReadStart := time.Now()

	for i := 0; i < numKeys; i++ {
		if n := table.Find(uint32(i), out); n != 1 {
			b.Fatalf("Expected one match for key %d, got %d", i, n)
		}
	}

	b.StopTimer()
	seqReadTime := time.Since(seqReadStart)
	metrics.Metrics["sequential_lookup_rate"] = float64(numKeys) / seqReadTime.Seconds()
	b.Logf("Time to verify all %d keys sequentially: %v", numKeys, seqReadTime)

	recordChainStats(table, &metrics)
	recordTrackerStats(tracker, &metrics)
	metrics.NsPerOp = float64(writeTime.Nanoseconds()+randomReadTime.Nanoseconds()+seqReadTime.Nanoseconds()) /
		float64(numKeys*2+sampleSize)

	if err := saveBenchmarkResult(metrics, "latest.json"); err != nil {
		b.Logf("Failed to save benchmark result to latest.json: %v", err)
	}
}

func BenchmarkAddInteger(b *testing.B) {
	table, err := chash.New[int, int](4096, chash.IntegerKey)
	if err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}
	defer table.Destroy()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := table.Add(i, i); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFindInteger(b *testing.B) {
	table, err := chash.New[int, int](4096, chash.IntegerKey)
	if err != nil {
		b.Fatalf("Failed to create table: %v", err)
	}
	defer table.Destroy()

	for i := 0; i < 40_960; i++ {
		if err := table.Add(i, i); err != nil {
			b.Fatal(err)
		}
	}

	out := make([]*chash.Node[int, int], 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		table.Find(i%40_960, out)
	}
}
