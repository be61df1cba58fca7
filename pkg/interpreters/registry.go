package interpreters

import (
	"github.com/function61/aws-to-slack/pkg/interpreter"
)

// AWS API clients some interpreters use for enrichment. nil disables the enrichment.
type Deps struct {
	CloudWatch MetricStatisticsGetter
	CodeCommit CommitReader
}

// most specific first. generic must stay last.
func All(deps Deps) []interpreter.Interpreter {
	return []interpreter.Interpreter{
		&cloudWatchAlarm{cw: deps.CloudWatch},
		&rds{},
		&beanstalk{},
		&awsHealth{},
		&inspector{},
		&codeBuild{},
		&codeDeploy{},
		&codePipelineApproval{},
		&codePipeline{},
		&cloudFormation{},
		&autoScaling{},
		&guardDuty{},
		&batch{},
		&ecs{},
		newSesReceived(),
		newSesBounce(),
		newSesComplaint(),
		&codeCommitPullRequest{},
		&codeCommitRepository{commits: deps.CodeCommit},
		&generic{},
	}
}

// one-liners for listings
var Descriptions = map[string]string{
	"cloudwatch-alarm":       "CloudWatch alarm state changes, with a metric chart",
	"rds":                    "RDS DB instance events",
	"beanstalk":              "Elastic Beanstalk environment notifications",
	"aws-health":             "AWS Health events",
	"inspector":              "Inspector assessment runs and findings",
	"codebuild":              "CodeBuild build state changes",
	"codedeploy":             "CodeDeploy deployments (EventBridge and SNS trigger)",
	"codepipeline-approval":  "CodePipeline manual approval requests",
	"codepipeline":           "CodePipeline execution state changes",
	"cloudformation":         "CloudFormation stack status (resource events are suppressed)",
	"autoscaling":            "EC2 Auto Scaling group activity",
	"guardduty":              "GuardDuty findings",
	"batch":                  "Batch job state changes",
	"ecs":                    "ECS task state changes",
	"ses-received":           "SES received mail",
	"ses-bounce":             "SES bounces",
	"ses-complaint":          "SES complaints",
	"codecommit-pullrequest": "CodeCommit pull request state changes",
	"codecommit-repository":  "CodeCommit pushes, branches and tags",
	"generic":                "anything else, as raw fields",
}
