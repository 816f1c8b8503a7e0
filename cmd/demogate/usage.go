package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tolutally/matchbox-web/internal/usage"
)

var usageBuckets = []string{usage.BucketCallMe, usage.BucketPrivateDemo}

func newUsageCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show or reset this device's demo quota",
	}
	cmd.PersistentFlags().StringVar(&path, "usage-file", "", "Device usage file (default in the user config dir)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show demo starts counted against this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openUsageStore(path)
			if err != nil {
				return err
			}
			q := usage.DefaultQuota()
			now := time.Now()
			out := cmd.OutOrStdout()

			for _, b := range usageBuckets {
				starts, err := store.Starts(b)
				if err != nil {
					return codeError(exitFailure, "%s", err)
				}
				fmt.Fprintf(out, "%s: %d of %d starts used in the last %d days\n",
					b, len(starts), q.Limit, int(q.Window/(24*time.Hour)))
				for _, ts := range starts {
					fmt.Fprintf(out, "  %s (%s)\n", ts.Local().Format(time.DateTime), humanize.Time(ts))
				}
				if next := q.NextAvailable(starts, now); !next.IsZero() {
					fmt.Fprintf(out, "  next start available %s\n", humanize.Time(next))
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), faintColor("file: "+store.Path()))
			return nil
		},
	}

	var bucket string
	reset := &cobra.Command{
		Use:   "reset",
		Short: "Forget recorded demo starts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bucket != "" && bucket != usage.BucketCallMe && bucket != usage.BucketPrivateDemo {
				return codeError(exitConfig, "unknown bucket %q", bucket)
			}
			store, err := openUsageStore(path)
			if err != nil {
				return err
			}
			if err := store.Reset(bucket); err != nil {
				return codeError(exitFailure, "%s", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Usage reset")
			return nil
		},
	}
	reset.Flags().StringVar(&bucket, "bucket", "", "Only reset this bucket")

	cmd.AddCommand(show, reset)
	return cmd
}
