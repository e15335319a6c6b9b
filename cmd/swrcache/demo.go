package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/codec"
	"github.com/unkn0wn-root/swrcache/executor"
	zl "github.com/unkn0wn-root/swrcache/log/zerolog"
)

type demoResult struct {
	Input      string    `json:"input"`
	ComputedAt time.Time `json:"computed_at"`
	Run        int       `json:"run"`
}

func newDemoCmd(a *app) *cobra.Command {
	var (
		input    string
		calls    int
		interval string
		delay    string
	)
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Call a slow operation repeatedly and show loading/loaded states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			every, err := parseDuration("interval", interval)
			if err != nil {
				return err
			}
			slow, err := parseDuration("delay", delay)
			if err != nil {
				return err
			}
			return runDemo(cmd, a, input, calls, every, slow)
		},
	}
	cmd.Flags().StringVar(&input, "arg", "hello", "argument passed to the operation")
	cmd.Flags().IntVar(&calls, "calls", 6, "number of calls")
	cmd.Flags().StringVar(&interval, "interval", "1s", "pause between calls")
	cmd.Flags().StringVar(&delay, "delay", "1500ms", "duration of each computation")
	return cmd
}

func runDemo(cmd *cobra.Command, a *app, input string, calls int, every, slow time.Duration) error {
	exec := &executor.Goroutines{OnPanic: func(r *panics.Recovered) {
		a.log.Error().Str("panic", r.String()).Msg("background task panicked")
	}}
	defer exec.Wait()

	var runs atomic.Int64
	op, err := swrcache.Define("demo.slow_echo", func(ctx context.Context, in string) (demoResult, error) {
		select {
		case <-time.After(slow):
		case <-ctx.Done():
			return demoResult{}, ctx.Err()
		}
		return demoResult{Input: in, ComputedAt: time.Now(), Run: int(runs.Add(1))}, nil
	}, swrcache.Options[demoResult]{
		Provider:      a.store,
		Codec:         codec.JSON[demoResult]{},
		Executor:      exec,
		Namespace:     a.settings.Namespace,
		ExpiresIn:     a.settings.Expires,
		SoftExpiresIn: a.settings.SoftExpires,
		Logger:        zl.Logger{L: a.log},
	})
	if err != nil {
		return err
	}

	key, err := op.Key(input)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "key: %s\n", key)

	for i := 1; i <= calls; i++ {
		res, err := op.Call(cmd.Context(), input)
		if err != nil {
			return err
		}
		if v, ok := res.Value(); ok {
			fmt.Fprintf(out, "call %d: loaded run=%d computed_at=%s\n", i, v.Run, v.ComputedAt.Format(time.RFC3339))
		} else {
			fmt.Fprintf(out, "call %d: loading\n", i)
		}
		if i < calls {
			time.Sleep(every)
		}
	}
	return nil
}
