package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cowspump/some-diploma-stuff/client"
)

func (a *app) newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Ask the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			return a.run(cmd, "ask", func(ctx context.Context, c *client.Client) error {
				reply, err := c.Ask(ctx, prompt)
				if err != nil {
					return err
				}
				return a.emit(cmd, map[string]string{"response": reply}, func(w io.Writer) {
					fmt.Fprintln(w, reply)
				})
			})
		},
	}
}

func (a *app) newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Summarize the journal and test history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "insights", func(ctx context.Context, c *client.Client) error {
				in, err := c.Insights(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, in, func(w io.Writer) {
					fmt.Fprintf(w, "Average mood:  %.2f over %d entries\n", in.AverageMood, in.Entries)
					fmt.Fprintf(w, "Average score: %.2f over %d tests (%s)\n", in.AverageScore, in.Tests, in.Badge.Label())
					fmt.Fprintf(w, "Trend:         %s\n", in.Trend)
					for _, r := range in.Recommendations {
						fmt.Fprintf(w, "- [%s] %s: %s\n", r.Category, r.Title, r.Description)
					}
				})
			})
		},
	}
}
