package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/function61/aws-to-slack/pkg/awstoslackclient"
	"github.com/function61/gokit/ossignal"
	"github.com/spf13/cobra"
)

func sendEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "send [baseUrl]",
		Short: "Send notification payload from stdin to a deployed REST API",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(send(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				args[0],
				os.Stdin,
				os.Stdout))
		},
	}
}

func send(ctx context.Context, baseUrl string, input io.Reader, output io.Writer) error {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return err
	}

	// a failed delivery still comes with per-record results
	result, err := awstoslackclient.New(baseUrl).Send(ctx, raw)
	if result != nil {
		fmt.Fprintf(output, "batch %s: %d of %d record(s) sent\n", result.BatchId, result.Sent(), len(result.Records))
		fmt.Fprintln(output, resultTable(*result).Render())
	}

	return err
}
