package main

import (
	"cmp"
	"os"
	"slices"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/parmap/pool"
)

var benchRounds int

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "time forward returns on every executor kind and scheduling strategy",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, n := env.cfg.Returns.Forward.Start, env.cfg.Returns.Forward.End
		results := runBench(cmd, m, n)
		return renderBench(os.Stdout, results)
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 3, "runs per combination, the fastest counts")
}

type benchResult struct {
	Rank     int
	Kind     pool.ExecutorKind
	Strategy pool.SchedulingStrategyType
	Best     time.Duration
	Err      error
}

func runBench(cmd *cobra.Command, m, n int) []benchResult {
	var results []benchResult
	for _, kind := range []pool.ExecutorKind{pool.KindOSThread, pool.KindGoroutine} {
		for _, strategy := range []pool.SchedulingStrategyType{
			pool.SchedulingShared,
			pool.SchedulingRoundRobin,
			pool.SchedulingWorkStealing,
		} {
			results = append(results, benchResult{Kind: kind, Strategy: strategy})
		}
	}

	rounds := max(benchRounds, 1)
	bar := pool.NewProgressBar("benchmarking", os.Stderr)
	bar.Start(len(results) * rounds)
	defer bar.Finish()

	for i := range results {
		r := &results[i]
		calc := env.calculator(
			pool.WithExecutorKind(r.Kind),
			pool.WithSchedulingStrategy(r.Strategy),
			pool.WithScopedExecutor(),
			pool.WithProgress(false),
		)
		for range rounds {
			start := time.Now()
			_, err := calc.ForwardReturns(cmd.Context(), m, n)
			elapsed := time.Since(start)
			bar.Advance(1)
			if err != nil {
				r.Err = err
				break
			}
			if r.Best == 0 || elapsed < r.Best {
				r.Best = elapsed
			}
		}
		env.log.WithFields(log.Fields{
			"kind":     r.Kind.String(),
			"strategy": r.Strategy.String(),
			"best":     r.Best,
		}).Debug("combination done")
	}

	rank(results)
	return results
}

// rank orders successful results by best time, failures last and unranked.
func rank(results []benchResult) {
	slices.SortStableFunc(results, func(a, b benchResult) int {
		if (a.Err == nil) != (b.Err == nil) {
			if a.Err == nil {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Best, b.Best)
	})
	for i := range results {
		if results[i].Err == nil {
			results[i].Rank = i + 1
		}
	}
}
