package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	pr "github.com/unkn0wn-root/swrcache/provider"
)

// app is shared by subcommands once the root's PersistentPreRunE has run.
type app struct {
	settings Settings
	log      zerolog.Logger
	store    pr.Provider
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "swrcache",
		Short:         "Inspect and manage stale-while-revalidate cache entries",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			a.settings = s
			a.log = newLogger(cmd, s.LogLevel)

			store, err := openStore(cmd.Context(), s)
			if err != nil {
				return err
			}
			a.store = store
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.store == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.store.Close(ctx)
		},
	}
	bindFlags(root)

	root.AddCommand(
		newInspectCmd(a),
		newInvalidateCmd(a),
		newDemoCmd(a),
	)
	return root
}

func newLogger(cmd *cobra.Command, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := cmd.ErrOrStderr()
	if out == os.Stderr {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
