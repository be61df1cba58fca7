package main

import (
	"log"

	"github.com/function61/aws-to-slack/pkg/awstoslacktypes"
	"github.com/function61/aws-to-slack/pkg/dispatch"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/interpreters"
	"github.com/function61/aws-to-slack/pkg/slackhook"
	"github.com/function61/gokit/logex"
)

type service struct {
	engine     *dispatch.Engine
	dispatcher *dispatch.Dispatcher
}

// nil deliverer = post to Slack
func newService(conf *config, deliverer dispatch.Deliverer, logger *log.Logger) (*service, error) {
	deps, err := interpreterDeps(conf)
	if err != nil {
		return nil, err
	}

	engine, err := dispatch.New(
		interpreters.All(deps),
		logex.Prefix("engine", logger),
		dispatch.WithMode(conf.mode),
		dispatch.WithOverlapPolicy(conf.overlap))
	if err != nil {
		return nil, err
	}

	if deliverer == nil {
		slack, err := slackhook.New(conf.slack, logex.Prefix("slack", logger))
		if err != nil {
			return nil, err
		}

		deliverer = slack
	}

	return &service{
		engine:     engine,
		dispatcher: dispatch.NewDispatcher(engine, deliverer, conf.defaultRegion, logex.Prefix("dispatch", logger)),
	}, nil
}

func ingestResultFrom(report *dispatch.Report) awstoslacktypes.IngestResult {
	result := awstoslacktypes.IngestResult{
		BatchId: report.BatchId,
		Records: []awstoslacktypes.RecordResult{},
	}

	for _, record := range report.Records {
		result.Records = append(result.Records, awstoslacktypes.RecordResult{
			Index:       record.Index,
			Outcome:     record.Outcome,
			Interpreter: record.Interpreter,
			Reason:      record.Reason,
			Overlaps:    record.Overlaps,
			Sent:        record.Sent,
			Error:       record.Error,
		})
	}

	return result
}

func interpreterInfos(items []interpreter.Interpreter) []awstoslacktypes.InterpreterInfo {
	infos := []awstoslacktypes.InterpreterInfo{}

	for _, item := range items {
		infos = append(infos, awstoslacktypes.InterpreterInfo{
			Name:        item.Name(),
			Description: interpreters.Descriptions[item.Name()],
			CatchesAll:  interpreter.IsCatchAll(item),
		})
	}

	return infos
}
