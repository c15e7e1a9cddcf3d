// Command vaultdb-bench measures how often concurrent writers against a
// shared account collide and get restarted.
package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vaultdb/vaultdb/pkg/seed"
	"github.com/vaultdb/vaultdb/pkg/service"
	"github.com/vaultdb/vaultdb/pkg/vault"

	"flag"
)

var (
	flagHelp       bool
	flagWorkers    int
	flagTransfers  int
	flagMaxRetries int
)

func init() {
	flag.BoolVar(&flagHelp, "help", false, "Show help")
	flag.BoolVar(&flagHelp, "h", false, "Show help (short)")
	flag.IntVar(&flagWorkers, "workers", 8, "Concurrent goroutines transferring money")
	flag.IntVar(&flagTransfers, "transfers", 200, "Transfers per worker")
	flag.IntVar(&flagMaxRetries, "max-retries", 5, "Per-transfer retry budget")
}

func main() {
	flag.Parse()

	if flagHelp {
		printHelp()
		os.Exit(0)
	}

	runBenchmark()
}

func printHelp() {
	fmt.Print(`VaultDB Concurrency Benchmark

Usage:
  vaultdb-bench [options]

Options:
  -h, -help             Show this help message
  -workers <n>          Concurrent goroutines transferring money (default 8)
  -transfers <n>        Transfers per worker (default 200)
  -max-retries <n>      Per-transfer retry budget (default 5)

All workers transfer back and forth between the same two fixture
accounts, so every write contends with every other worker.
`)
}

func runBenchmark() {
	fmt.Println("VaultDB Concurrency Benchmark")
	fmt.Println("=============================")
	fmt.Printf("workers=%d transfers/worker=%d max_retries=%d\n", flagWorkers, flagTransfers, flagMaxRetries)
	fmt.Println()

	v := vault.New(vault.Options{MaxRetries: flagMaxRetries})
	defer v.Close()

	if err := seed.Load(v); err != nil {
		fmt.Fprintf(os.Stderr, "error loading fixture data: %v\n", err)
		os.Exit(1)
	}

	bank := service.NewBankService(v.Manager)

	var succeeded, failed int64
	var wg sync.WaitGroup
	start := time.Now()

	for w := 0; w < flagWorkers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			client := fmt.Sprintf("bench-worker-%d", worker)
			for i := 0; i < flagTransfers; i++ {
				from, to := "1", "2"
				if i%2 == 1 {
					from, to = "2", "1"
				}
				if err := bank.Transfer(client, from, to, 1, "bench", flagMaxRetries); err != nil {
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	stats := v.Statistics()

	fmt.Println("Results")
	fmt.Printf("  elapsed:       %s\n", elapsed)
	fmt.Printf("  succeeded:     %d\n", succeeded)
	fmt.Printf("  failed:        %d\n", failed)
	fmt.Printf("  transactions:  %d\n", stats.Total)
	fmt.Printf("  log entries:   %d\n", stats.LogEntries)
	if succeeded+failed > 0 {
		fmt.Printf("  throughput:    %.0f transfers/sec\n", float64(succeeded+failed)/elapsed.Seconds())
	}
}
