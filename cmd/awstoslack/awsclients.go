package main

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/codecommit"
	"github.com/function61/aws-to-slack/pkg/interpreters"
)

// credentials come from the usual chain (Lambda execution role, env, ~/.aws). nothing is
// called until an interpreter needs it, so a missing IAM permission only costs that enrichment.
func interpreterDeps(conf *config) (interpreters.Deps, error) {
	awsSession, err := session.NewSession(aws.NewConfig().WithRegion(conf.defaultRegion))
	if err != nil {
		return interpreters.Deps{}, err
	}

	deps := interpreters.Deps{
		CodeCommit: codecommit.New(awsSession),
	}

	if conf.charts {
		deps.CloudWatch = cloudwatch.New(awsSession)
	}

	return deps, nil
}
