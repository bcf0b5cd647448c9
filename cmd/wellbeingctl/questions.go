package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cowspump/some-diploma-stuff/client"
	"github.com/Cowspump/some-diploma-stuff/client/scoring"
)

func (a *app) newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Well-being test questions and results",
	}
	cmd.AddCommand(a.newQuestionsCmd())
	cmd.AddCommand(a.newSubmitCmd())
	cmd.AddCommand(a.newResultsCmd())
	cmd.AddCommand(a.newAddQuestionCmd())
	cmd.AddCommand(a.newDeleteQuestionCmd())
	return cmd
}

func (a *app) newQuestionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "questions",
		Short: "List the test questions with their options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "test.questions", func(ctx context.Context, c *client.Client) error {
				qs, err := c.Questions(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, qs, func(w io.Writer) {
					for _, q := range qs {
						fmt.Fprintf(w, "%d. %s\n", q.ID, q.Text)
						for i, o := range q.Options {
							fmt.Fprintf(w, "   [%d] %s (%d)\n", i, o.Text, o.Points)
						}
					}
				})
			})
		},
	}
}

// parseAnswers turns "questionID=optionIndex" pairs into a submission.
func parseAnswers(pairs []string) (map[int]int, error) {
	answers := make(map[int]int, len(pairs))
	for _, p := range pairs {
		qs, is, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q must look like <question-id>=<option-index>", p)
		}
		qid, err := strconv.Atoi(strings.TrimSpace(qs))
		if err != nil {
			return nil, fmt.Errorf("answer %q: invalid question id", p)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(is))
		if err != nil {
			return nil, fmt.Errorf("answer %q: invalid option index", p)
		}
		answers[qid] = idx
	}
	return answers, nil
}

func (a *app) newSubmitCmd() *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit answers, e.g. --answer 1=0 --answer 2=3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := parseAnswers(pairs)
			if err != nil {
				return err
			}
			return a.run(cmd, "test.submit", func(ctx context.Context, c *client.Client) error {
				res, err := c.SubmitTest(ctx, answers)
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) {
					fmt.Fprintf(w, "Total score: %d (%s)\n", res.TotalScore, scoring.BadgeFor(res.TotalScore).Label())
				})
			})
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "answer", nil, "Answer as <question-id>=<option-index>; repeatable")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}

func (a *app) newResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "List past test totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "test.results", func(ctx context.Context, c *client.Client) error {
				results, err := c.TestResults(ctx)
				if err != nil {
					return err
				}
				return a.emit(cmd, results, func(w io.Writer) {
					if len(results) == 0 {
						fmt.Fprintln(w, "No test results")
						return
					}
					for _, r := range results {
						fmt.Fprintf(w, "#%d  %s  %d (%s)\n",
							r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.TotalScore, scoring.BadgeFor(r.TotalScore).Label())
					}
				})
			})
		},
	}
}

// parseOptions turns "text:points" pairs into answer options. The last colon
// separates the points so option texts may contain colons.
func parseOptions(raw []string) ([]client.AnswerOption, error) {
	opts := make([]client.AnswerOption, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, ":")
		if i <= 0 {
			return nil, fmt.Errorf("option %q must look like <text>:<points>", r)
		}
		points, err := strconv.Atoi(strings.TrimSpace(r[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("option %q: invalid points", r)
		}
		opts = append(opts, client.AnswerOption{Text: strings.TrimSpace(r[:i]), Points: points})
	}
	return opts, nil
}

func (a *app) newAddQuestionCmd() *cobra.Command {
	var text string
	var rawOptions []string

	cmd := &cobra.Command{
		Use:   "add-question",
		Short: "Add a question (therapists only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseOptions(rawOptions)
			if err != nil {
				return err
			}
			return a.run(cmd, "test.add_question", func(ctx context.Context, c *client.Client) error {
				res, err := c.AddQuestion(ctx, client.QuestionInput{Text: text, Options: opts})
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) { fmt.Fprintln(w, message(res)) })
			})
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Question text")
	cmd.Flags().StringArrayVar(&rawOptions, "option", nil, "Option as <text>:<points>; repeatable")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("option")
	return cmd
}

func (a *app) newDeleteQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-question <id>",
		Short: "Delete a question (therapists only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid question id %q", args[0])
			}
			return a.run(cmd, "test.delete_question", func(ctx context.Context, c *client.Client) error {
				res, err := c.DeleteQuestion(ctx, id)
				if err != nil {
					return err
				}
				return a.emit(cmd, res, func(w io.Writer) { fmt.Fprintln(w, message(res)) })
			})
		},
	}
}
