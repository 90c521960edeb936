package main

import (
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/utkarsh5026/parmap/returns"
)

var (
	fwdStart int
	fwdEnd   int
)

var forwardCmd = &cobra.Command{
	Use:   "forward",
	Short: "forward cumulative returns from m to n rows ahead, summarized per symbol",
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, n := env.cfg.Returns.Forward.Start, env.cfg.Returns.Forward.End
		if cmd.Flags().Changed("from") {
			m = fwdStart
		}
		if cmd.Flags().Changed("to") {
			n = fwdEnd
		}

		start := time.Now()
		fwd, err := env.calculator().ForwardReturns(cmd.Context(), m, n)
		if err != nil {
			return err
		}
		env.log.WithField("duration", time.Since(start)).Info("forward returns done")

		return renderForward(os.Stdout, m, n, summarize(env.data.obs, fwd))
	},
}

func init() {
	forwardCmd.Flags().IntVar(&fwdStart, "from", 1, "first row ahead, overrides the config")
	forwardCmd.Flags().IntVar(&fwdEnd, "to", 5, "last row ahead, overrides the config")
}

type forwardStat struct {
	Symbol  string
	Rows    int
	Defined int
	Mean    float64
	Min     float64
	Max     float64
}

// summarize groups fwd, aligned with obs, per symbol in order of first appearance.
// Statistics cover defined values only and are NaN for a symbol without any.
func summarize(obs []returns.Observation, fwd []float64) []forwardStat {
	index := make(map[string]int)
	var (
		out    []forwardStat
		values [][]float64
	)
	for i, o := range obs {
		k, ok := index[o.Symbol]
		if !ok {
			k = len(out)
			index[o.Symbol] = k
			out = append(out, forwardStat{Symbol: o.Symbol})
			values = append(values, nil)
		}
		out[k].Rows++
		if !math.IsNaN(fwd[i]) {
			values[k] = append(values[k], fwd[i])
		}
	}

	for k, v := range values {
		out[k].Defined = len(v)
		if len(v) == 0 {
			out[k].Mean, out[k].Min, out[k].Max = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		out[k].Mean = stat.Mean(v, nil)
		out[k].Min = floats.Min(v)
		out[k].Max = floats.Max(v)
	}
	return out
}
