// Command paisa-cli runs bank messages through the extraction pipeline from
// the terminal: parse them locally, or publish them to the worker queue.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"paisa/internal/amqp"
	"paisa/internal/config"
	"paisa/internal/core"
	"paisa/internal/sms"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "paisa-cli",
		Short:         "Parse bank SMS messages into transactions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newParseCmd(), newPublishCmd(), newInstitutionsCmd())
	return root
}

// newParseCmd parses messages locally, one per line, without touching storage
// or the queue.
func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse messages from a file (or stdin) and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args)
			if err != nil {
				return err
			}

			table, err := sms.LoadKeywordTable()
			if err != nil {
				return fmt.Errorf("load keyword table: %w", err)
			}
			parser := sms.NewParser(sms.NewCategorizer(table))

			out := cmd.OutOrStdout()
			var matched, skipped int
			for i, line := range lines {
				tx, err := parser.Parse(sms.RawMessage{
					ID:         fmt.Sprintf("line-%d", i+1),
					Body:       line,
					ReceivedAt: time.Now(),
				})
				if err != nil {
					skipped++
					fmt.Fprintf(out, "line %d: skipped (%v)\n", i+1, err)
					continue
				}
				matched++
				fmt.Fprintf(out, "line %d: %s %s %s [%s via %s] %s\n",
					i+1,
					tx.Timestamp.Format("2006-01-02"),
					directionSign(tx.Direction),
					tx.Amount.String(),
					tx.Category,
					tx.Source,
					tx.MerchantName,
				)
			}
			fmt.Fprintf(out, "\n%d matched, %d skipped\n", matched, skipped)
			return nil
		},
	}
}

// newPublishCmd pushes messages onto the queue for the worker to ingest.
func newPublishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish [file]",
		Short: "Publish messages from a file (or stdin) to the worker queue",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readLines(args)
			if err != nil {
				return err
			}

			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}

			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
			if err != nil {
				return fmt.Errorf("connect to queue: %w", err)
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			for _, line := range lines {
				msg := amqp.NewSMSReceivedMessage(uuid.NewString(), line)
				if err := client.PublishSMSReceived(ctx, msg); err != nil {
					return fmt.Errorf("publish message: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %d messages to %s\n", len(lines), cfg.AMQPQueue)
			return nil
		},
	}
}

func newInstitutionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "institutions",
		Short: "List the institutions with recognized message formats",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range sms.Institutions() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

// readLines reads non-empty lines from the named file, or stdin when no file
// is given.
func readLines(args []string) ([]string, error) {
	in := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}

	var lines []string
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

func directionSign(d core.Direction) string {
	if d == core.Credit {
		return "+"
	}
	return "-"
}
