package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/function61/aws-to-slack/pkg/awstoslackclient"
	"github.com/function61/aws-to-slack/pkg/awstoslacktypes"
	"github.com/function61/aws-to-slack/pkg/interpreters"
	"github.com/function61/gokit/ossignal"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

func interpretersEntry() *cobra.Command {
	remote := ""

	cmd := &cobra.Command{
		Use:   "interpreters",
		Short: "List interpreters in the order they're tried",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(listInterpreters(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				remote,
				os.Stdout))
		},
	}

	cmd.Flags().StringVarP(&remote, "remote", "r", remote, "List from a deployed REST API at this base URL instead")

	return cmd
}

func listInterpreters(ctx context.Context, remote string, output io.Writer) error {
	// API clients don't affect matching or order
	infos := interpreterInfos(interpreters.All(interpreters.Deps{}))

	if remote != "" {
		var err error
		infos, err = awstoslackclient.New(remote).Interpreters(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(output, interpretersTable(infos).Render())

	return nil
}

func interpretersTable(infos []awstoslacktypes.InterpreterInfo) *termtables.Table {
	view := termtables.CreateTable()
	view.AddHeaders("#", "Name", "Catch-all", "Description")

	for idx, info := range infos {
		catchAll := ""
		if info.CatchesAll {
			catchAll = "yes"
		}

		view.AddRow(idx+1, info.Name, catchAll, info.Description)
	}

	return view
}
