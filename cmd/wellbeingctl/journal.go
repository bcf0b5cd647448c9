package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

func (a *app) newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Mood journal entries",
	}
	cmd.AddCommand(a.newJournalAddCmd())
	cmd.AddCommand(a.newJournalListCmd())
	cmd.AddCommand(a.newJournalDeleteCmd())
	return cmd
}

func (a *app) newJournalAddCmd() *cobra.Command {
	var score int
	var note string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a mood score (0-5) with an optional note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var notePtr *string
			if cmd.Flags().Changed("note") {
				notePtr = &note
			}
			return a.run(cmd, "journal.add", func(ctx context.Context, c *client.Client) error {
				res, err := c.AddJournalEntry(ctx, score, notePtr)
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) { fmt.Fprintln(w, message(res)) })
			})
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Mood score from 0 (very bad) to 5 (very good)")
	cmd.Flags().StringVar(&note, "note", "", "Free text note")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func (a *app) newJournalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the most recent entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "journal.list", func(ctx context.Context, c *client.Client) error {
				entries, err := c.JournalEntries(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, entries, func(w io.Writer) {
					if len(entries) == 0 {
						fmt.Fprintln(w, "No journal entries")
						return
					}
					for _, e := range entries {
						fmt.Fprintf(w, "#%d  %s  %d (%s)",
							e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Score, scoring.MoodLevelFor(e.Score))
						if n := e.NoteText(); n != "" {
							fmt.Fprintf(w, "  %s", n)
						}
						fmt.Fprintln(w)
					}
				})
			})
		},
	}
}

func (a *app) newJournalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return a.run(cmd, "journal.delete", func(ctx context.Context, c *client.Client) error {
				res, err := c.DeleteJournalEntry(ctx, id)
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) { fmt.Fprintln(w, message(res)) })
			})
		},
	}
}
