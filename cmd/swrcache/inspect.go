package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache/internal/wire"
	pr "github.com/unkn0wn-root/swrcache/provider"
)

const (
	kindComputed    = "computed"
	kindPlaceholder = "placeholder"
	kindCorrupt     = "corrupt"
)

type entryInfo struct {
	Key           string     `json:"key"`
	Found         bool       `json:"found"`
	Kind          string     `json:"kind,omitempty"`
	SoftExpiresAt *time.Time `json:"soft_expires_at,omitempty"`
	Stale         bool       `json:"stale"`
	TTL           string     `json:"ttl,omitempty"`
	PayloadBytes  int        `json:"payload_bytes"`
	Payload       string     `json:"payload,omitempty"`
}

func newInspectCmd(a *app) *cobra.Command {
	var asJSON, withPayload bool
	cmd := &cobra.Command{
		Use:   "inspect <key>",
		Short: "Decode the envelope stored under a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := describe(cmd.Context(), a.store, args[0], time.Now())
			if err != nil {
				return err
			}
			if !withPayload {
				info.Payload = ""
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			printInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&withPayload, "payload", false, "include the raw payload")
	return cmd
}

func describe(ctx context.Context, store pr.Provider, key string, now time.Time) (entryInfo, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	info := entryInfo{Key: key}
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return info, fmt.Errorf("get %q: %w", key, err)
	}
	if !ok {
		return info, nil
	}
	info.Found = true

	if d, known, err := remainingTTL(ctx, store, key); err == nil && known {
		if d == 0 {
			info.TTL = "none"
		} else {
			info.TTL = d.Round(time.Millisecond).String()
		}
	}

	env, err := wire.Decode(raw)
	switch {
	case err != nil:
		info.Kind = kindCorrupt
		info.PayloadBytes = len(raw)
	case env.Pending:
		info.Kind = kindPlaceholder
	default:
		info.Kind = kindComputed
		info.PayloadBytes = len(env.Payload)
		info.Payload = string(env.Payload)
		if !env.SoftExpiresAt.IsZero() {
			t := env.SoftExpiresAt
			info.SoftExpiresAt = &t
			info.Stale = now.After(t)
		}
	}
	return info, nil
}

func printInfo(w io.Writer, info entryInfo) {
	if !info.Found {
		fmt.Fprintf(w, "%s: not found\n", info.Key)
		return
	}
	fmt.Fprintf(w, "key:      %s\n", info.Key)
	fmt.Fprintf(w, "kind:     %s\n", info.Kind)
	if info.SoftExpiresAt != nil {
		state := "fresh"
		if info.Stale {
			state = "stale"
		}
		fmt.Fprintf(w, "soft exp: %s (%s)\n", info.SoftExpiresAt.Format(time.RFC3339), state)
	}
	if info.TTL != "" {
		fmt.Fprintf(w, "ttl:      %s\n", info.TTL)
	}
	fmt.Fprintf(w, "payload:  %d bytes\n", info.PayloadBytes)
	if info.Payload != "" {
		fmt.Fprintf(w, "%s\n", info.Payload)
	}
}
