package lookup

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"go.miragespace.co/chordring/spec/chord"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func GenerateBench() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     "measure lookup latency with random keys",
		ArgsUsage: " ",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Value: 100,
				Usage: "number of lookups to perform",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Value: 4,
				Usage: "number of lookups in flight at once",
			},
		}, viaFlags()...),
		Before: func(ctx *cli.Context) error {
			if ctx.Int("count") < 1 {
				return fmt.Errorf("count must be positive")
			}
			if ctx.Int("concurrency") < 1 {
				return fmt.Errorf("concurrency must be positive")
			}
			return checkSpace(ctx)
		},
		Action: cmdBench,
	}
}

type benchResult struct {
	latencies stats.Float64Data
	failures  int
}

// summarize reports latencies in milliseconds
func (r *benchResult) summarize() (min, mean, p99, max float64, err error) {
	if min, err = stats.Min(r.latencies); err != nil {
		return
	}
	if mean, err = stats.Mean(r.latencies); err != nil {
		return
	}
	if p99, err = stats.Percentile(r.latencies, 99); err != nil {
		return
	}
	max, err = stats.Max(r.latencies)
	return
}

func cmdBench(ctx *cli.Context) error {
	via, err := connect(ctx)
	if err != nil {
		return err
	}
	space := chord.Space(ctx.Uint("space"))

	var (
		mu     sync.Mutex
		result = &benchResult{
			latencies: make(stats.Float64Data, 0, ctx.Int("count")),
		}
	)

	g := new(errgroup.Group)
	g.SetLimit(ctx.Int("concurrency"))

	start := time.Now()
	for i := 0; i < ctx.Int("count"); i++ {
		key := strconv.FormatUint(space.Random(), 16)
		g.Go(func() error {
			begin := time.Now()
			_, err := lookupKey(ctx.Context, via, space, key)
			elapsed := time.Since(begin)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.failures++
				return nil
			}
			result.latencies = append(result.latencies, float64(elapsed)/float64(time.Millisecond))
			return nil
		})
	}
	g.Wait()
	total := time.Since(start)

	if len(result.latencies) == 0 {
		return fmt.Errorf("all %d lookups failed", result.failures)
	}

	min, mean, p99, max, err := result.summarize()
	if err != nil {
		return fmt.Errorf("error computing statistics: %w", err)
	}

	failures := strconv.Itoa(result.failures)
	if result.failures > 0 {
		failures = color.RedString(failures)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Lookups", "Failed", "Min (ms)", "Mean (ms)", "P99 (ms)", "Max (ms)"})
	t.AppendRow(table.Row{
		len(result.latencies),
		failures,
		fmt.Sprintf("%.3f", min),
		fmt.Sprintf("%.3f", mean),
		fmt.Sprintf("%.3f", p99),
		fmt.Sprintf("%.3f", max),
	})
	t.SetCaption("(%d lookups in %s via %s)", ctx.Int("count"), total.Round(time.Millisecond), via.Identity())
	t.SetStyle(table.StyleDefault)
	t.Render()

	return nil
}
