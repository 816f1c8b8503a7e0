package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tolutally/matchbox-web/internal/client"
)

func newTokensCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tokens",
		Short: "Generate, list and delete demo access tokens",
	}
	cmd.AddCommand(newGenerateCmd(g), newListCmd(g), newDeleteCmd(g))
	return cmd
}

func newGenerateCmd(g *globalFlags) *cobra.Command {
	var p client.GenerateParams
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue new single-use tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := g.apiClient()
			if err != nil {
				return err
			}
			res, err := api.GenerateTokens(cmd.Context(), p)
			if err != nil {
				return apiError("generate tokens", err)
			}

			out := cmd.OutOrStdout()
			for _, t := range res.Tokens {
				fmt.Fprintln(out, t)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d token(s), expire %s (%s)\n",
				len(res.Tokens), humanize.Time(res.ExpiresAt), res.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&p.Count, "count", "n", 1, "Number of tokens (1-20)")
	f.IntVar(&p.ExpiresInHours, "hours", 48, "Lifetime in hours (1-720)")
	f.StringVar(&p.Note, "note", "", "Note stored with each token")
	return cmd
}

func newListCmd(g *globalFlags) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tokens, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch status {
			case "", "active", "used", "expired":
			default:
				return codeError(exitConfig, "unknown status %q", status)
			}

			api, err := g.apiClient()
			if err != nil {
				return err
			}
			res, err := api.ListTokens(cmd.Context())
			if err != nil {
				return apiError("list tokens", err)
			}
			if res.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", res.Warning)
			}
			writeTokenTable(cmd.OutOrStdout(), res, status, time.Now())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only show tokens with this status (active, used, expired)")
	return cmd
}

func writeTokenTable(w io.Writer, res *client.ListResult, status string, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tSTATUS\tCREATED\tEXPIRES\tNOTE")
	for _, t := range res.Tokens {
		if status != "" && t.Status != status {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.Token,
			colorStatus(t.Status),
			humanize.RelTime(t.CreatedAt, now, "ago", "from now"),
			humanize.RelTime(t.ExpiresAt, now, "ago", "from now"),
			t.Note,
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d total, %d active, %d used, %d expired\n", res.Total, res.Active, res.Used, res.Expired)
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	var p client.DeleteParams
	cmd := &cobra.Command{
		Use:   "delete [TOKEN]",
		Short: "Delete one token or every token matching a selector",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Token = args[0]
			}
			if p.Token == "" && !p.All && !p.Used && !p.Expired {
				return codeError(exitConfig, "give a token or one of --all, --used, --expired")
			}

			api, err := g.apiClient()
			if err != nil {
				return err
			}
			n, err := api.DeleteTokens(cmd.Context(), p)
			if err != nil {
				return apiError("delete tokens", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d token(s)\n", n)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&p.All, "all", false, "Delete every token")
	f.BoolVar(&p.Used, "used", false, "Delete used tokens")
	f.BoolVar(&p.Expired, "expired", false, "Delete expired tokens")
	return cmd
}

func newValidateCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate TOKEN",
		Short: "Consume a token, as the demo page does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := g.apiClient()
			if err != nil {
				return err
			}
			if err := api.ValidateToken(cmd.Context(), args[0]); err != nil {
				return apiError("validate", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token accepted")
			return nil
		},
	}
}
