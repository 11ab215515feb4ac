package lock

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/locksmith-go/locksmith/cmd/util"
	"github.com/locksmith-go/locksmith/rpc/client"
	"github.com/locksmith-go/locksmith/rpc/common"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for locksmith servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfLockPrefix  = "__test"
	perfNumThreads  = 10
	perfLockSpread  = 100
	perfValiditySec = uint64(60)
	perfSkip        = make([]string, 0)
	perfRegistry    = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. acquire,update)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "locks"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different lock names to use for the tests"))
	key = "validity"
	perfTestCmd.Flags().Uint64(key, 60, util.WrapString("Lease validity in seconds used by the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLockSpread = viper.GetInt("locks")
	perfNumThreads = viper.GetInt("threads")
	perfValiditySec = viper.GetUint64("validity")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for locksmith servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	cycleResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("cycle") {
			return
		}

		timer := gometrics.GetOrRegisterTimer("cycle", perfRegistry)

		// prepare lock names
		getName := getNames("cycle")

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				l, err := rpcLocksmith.Acquire(getName(counter), perfValiditySec)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(cycle) - error acquiring lock: %v\n", err)
				} else if l != nil {
					if _, err := l.Release(); err != nil {
						log.Printf("(cycle) - error releasing lock: %v\n", err)
					}
				}
				counter++
			}
		})
	})

	results["cycle"] = cycleResult
	printResult("cycle", cycleResult)

	contendedResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("contended") {
			return
		}

		timer := gometrics.GetOrRegisterTimer("contended", perfRegistry)

		// hold one lock for the whole test so every acquire loses
		holder, err := rpcLocksmith.Acquire(perfLockPrefix+"-contended", 3600)
		if err != nil || holder == nil {
			log.Printf("(contended) - could not set up held lock: %v\n", err)
			return
		}

		// cleanup
		b.Cleanup(func() {
			if _, err := holder.Release(); err != nil {
				log.Printf("(contended) - error releasing lock: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				l, err := rpcLocksmith.Acquire(perfLockPrefix+"-contended", perfValiditySec)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(contended) - error acquiring lock: %v\n", err)
				} else if l != nil {
					log.Printf("(contended) - unexpectedly won a held lock\n")
				}
			}
		})
	})

	results["contended"] = contendedResult
	printResult("contended", contendedResult)

	updateResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("update") {
			return
		}

		timer := gometrics.GetOrRegisterTimer("update", perfRegistry)

		// acquire every lock once up front, then renew them repeatedly
		getName := getNames("update")
		handles := make([]*client.Lock, perfLockSpread)
		for i := 0; i < perfLockSpread; i++ {
			l, err := rpcLocksmith.Acquire(getName(i), 3600)
			if err != nil || l == nil {
				log.Printf("(update) - could not set up lock %d: %v\n", i, err)
				return
			}
			handles[i] = l
		}

		// cleanup
		b.Cleanup(func() {
			for _, l := range handles {
				if _, err := l.Release(); err != nil {
					log.Printf("(update) - error releasing lock: %v\n", err)
				}
			}
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				ok, err := handles[counter%perfLockSpread].Update(perfValiditySec)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(update) - error updating lease: %v\n", err)
				} else if !ok {
					log.Printf("(update) - lease unexpectedly lost\n")
				}
				counter++
			}
		})
	})

	results["update"] = updateResult
	printResult("update", updateResult)

	statsResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("stats") {
			return
		}

		timer := gometrics.GetOrRegisterTimer("stats", perfRegistry)

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				_, err := rpcLocksmith.Statistics()
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(stats) - error fetching statistics: %v\n", err)
				}
			}
		})
	})

	results["stats"] = statsResult
	printResult("stats", statsResult)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// getNames returns a function mapping an index to a test lock name
// (with wraparound)
func getNames(prefix string) func(int) string {
	names := make([]string, perfLockSpread)
	for i := 0; i < perfLockSpread; i++ {
		names[i] = fmt.Sprintf("%s-%s-%d", perfLockPrefix, prefix, i)
	}

	return func(i int) string {
		return names[i%perfLockSpread]
	}
}

// printResult prints the result of a benchmark test in a formatted way,
// including latency percentiles from the per-test timer
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)

	if t, ok := perfRegistry.Get(test).(gometrics.Timer); ok {
		ps := t.Snapshot().Percentiles([]float64{0.5, 0.95, 0.99})
		fmt.Printf("%-20sp50=%s p95=%s p99=%s\n", "",
			time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]))
	}
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P95Ns", "P99Ns", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Serializer", "Transport",
		"Threads", "ValiditySec", "Locks Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		ps := []float64{0, 0, 0}
		if timer, ok := perfRegistry.Get(test).(gometrics.Timer); ok {
			ps = timer.Snapshot().Percentiles([]float64{0.5, 0.95, 0.99})
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", ps[2]),
			skipped,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.FormatUint(perfValiditySec, 10),
			strconv.Itoa(perfLockSpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
