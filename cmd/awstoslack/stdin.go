package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awstoslacktypes"
	"github.com/function61/aws-to-slack/pkg/dispatch"
	"github.com/function61/aws-to-slack/pkg/slackhook"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/stringutils"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

func stdinEntry() *cobra.Command {
	dryRun := false

	cmd := &cobra.Command{
		Use:   "stdin",
		Short: "Dispatch a notification payload read from stdin (same as Lambda would)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			exitIfError(func() error {
				conf, err := configFromEnv(!dryRun)
				if err != nil {
					return err
				}

				return dispatchStdin(
					ossignal.InterruptOrTerminateBackgroundCtx(logger),
					conf,
					os.Stdin,
					os.Stdout,
					dryRun,
					logger)
			}())
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", dryRun, "Print the Slack messages instead of posting them")

	return cmd
}

func dispatchStdin(
	ctx context.Context,
	conf *config,
	input io.Reader,
	output io.Writer,
	dryRun bool,
	logger *log.Logger,
) error {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return err
	}

	var deliverer dispatch.Deliverer
	if dryRun {
		deliverer = slackhook.NewPrinter(output)
	}

	a, err := newService(conf, deliverer, logger)
	if err != nil {
		return err
	}

	report, err := a.dispatcher.Process(ctx, raw)
	if report != nil {
		fmt.Fprintln(output, resultTable(ingestResultFrom(report)).Render())
	}

	return err
}

func resultTable(result awstoslacktypes.IngestResult) *termtables.Table {
	view := termtables.CreateTable()
	view.AddHeaders("#", "Outcome", "Interpreter", "Sent", "Details")

	for _, record := range result.Records {
		details := record.Reason
		if record.Error != "" {
			details = record.Error
		} else if len(record.Overlaps) > 0 {
			details = "also matched: " + strings.Join(record.Overlaps, ", ")
		}

		sent := "no"
		if record.Sent {
			sent = "yes"
		}

		view.AddRow(
			record.Index,
			record.Outcome,
			record.Interpreter,
			sent,
			stringutils.Truncate(details, 60))
	}

	return view
}
