package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newInvalidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <key>...",
		Short: "Delete entries; the next call recomputes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, keys []string) error {
			var errs []error
			for _, k := range keys {
				if err := a.store.Del(cmd.Context(), k); err != nil {
					a.log.Warn().Err(err).Str("key", k).Msg("delete failed")
					errs = append(errs, fmt.Errorf("%s: %w", k, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", k)
			}
			return errors.Join(errs...)
		},
	}
}
