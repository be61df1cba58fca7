package interpreters

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/codecommit"
	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// subset of codecommitiface.CodeCommitAPI
type CommitReader interface {
	GetBranchWithContext(aws.Context, *codecommit.GetBranchInput, ...request.Option) (*codecommit.GetBranchOutput, error)
	GetCommitWithContext(aws.Context, *codecommit.GetCommitInput, ...request.Option) (*codecommit.GetCommitOutput, error)
}

const (
	codeCommitPullRequestChange = "CodeCommit Pull Request State Change"
	codeCommitRepositoryChange  = "CodeCommit Repository State Change"
	commitMessageUnavailable    = "Could not get message."
)

type codeCommitPullRequest struct{}

func (c *codeCommitPullRequest) Name() string {
	return "codecommit-pullrequest"
}

func (c *codeCommitPullRequest) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "codecommit") && env.GetString("detail-type", "") == codeCommitPullRequestChange
}

func (c *codeCommitPullRequest) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	repoName := env.GetString("detail.repositoryNames[0]", "")
	pullRequestId := env.GetString("detail.pullRequestId", "")
	status := env.GetString("detail.pullRequestStatus", "")
	merged := env.GetString("detail.isMerged", "")

	baseTitle := "Pull Request #" + pullRequestId

	color := rc.Palette.Neutral
	title := baseTitle
	switch event := env.GetString("detail.event", ""); {
	case event == "pullRequestMergeStatusUpdated" && status == "Closed" && merged == "True":
		title = baseTitle + " was merged"
		color = rc.Palette.Accent
	case event == "pullRequestStatusChanged" && status == "Closed" && merged == "False":
		title = baseTitle + " was closed"
		color = rc.Palette.Critical
	case event == "pullRequestCreated":
		title = baseTitle + " was opened"
		color = rc.Palette.Ok
	case event == "pullRequestSourceBranchUpdated":
		title = baseTitle + " source branch was updated"
		color = rc.Palette.Warning
	}

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "AWS CodeCommit",
		Fallback:   fmt.Sprintf("%s: %s", repoName, title),
		Color:      color,
		Title:      title,
		TitleLink:  consoleLink(env, rc, "/codecommit/home#/repository/"+repoName+"/pull-request/"+pullRequestId),
		Fields: nonEmpty(
			short("Repository", repoName),
			short("Pull Request Title", env.GetString("detail.title", "")),
			long("Caller ARN", env.GetString("detail.callerUserArn", ""))),
		MrkdwnIn: []string{"title", "text"},
		Ts:       epochAt(env, "time"),
	}), nil
}

type codeCommitRepository struct {
	commits CommitReader // nil = no commit messages
}

func (c *codeCommitRepository) Name() string {
	return "codecommit-repository"
}

func (c *codeCommitRepository) Matches(env *awsevent.Envelope) bool {
	return sourceIs(env, "codecommit") && env.GetString("detail-type", "") == codeCommitRepositoryChange
}

func (c *codeCommitRepository) Render(ctx context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	repoName := env.GetString("detail.repositoryName", "")
	refName := env.GetString("detail.referenceName", "")
	refType := env.GetString("detail.referenceType", "")

	title := repoName
	fetchMessage := false

	switch event := env.GetString("detail.event", ""); refType + "/" + event {
	case "branch/referenceCreated":
		title = "New branch created in repository " + repoName
		fetchMessage = true
	case "branch/referenceUpdated":
		title = "New commit pushed to repository " + repoName
		fetchMessage = true
	case "branch/referenceDeleted":
		title = "Deleted branch in repository " + repoName
	case "tag/referenceCreated":
		title = "New tag created in repository " + repoName
	case "tag/referenceUpdated":
		title = "Tag reference modified in repository " + repoName
	case "tag/referenceDeleted":
		title = "Deleted tag in repository " + repoName
	}

	fields := []slackmsg.Field{short("Repository", repoName)}
	if refType != "" {
		fields = append(fields, short(strings.Title(refType), refName))
	}
	fields = append(fields, long("Caller ARN", env.GetString("detail.callerUserArn", "")))

	text := ""
	if fetchMessage && c.commits != nil {
		message, err := c.headCommitMessage(ctx, repoName, refName)
		if err != nil {
			rc.Logl.Error.Printf("codecommit: %s/%s: %v", repoName, refName, err)
			text = commitMessageUnavailable
		} else {
			text = message
		}
	}

	return rendered(env, rc, slackmsg.Attachment{
		AuthorName: "AWS CodeCommit",
		Fallback:   fmt.Sprintf("%s: %s", repoName, title),
		Color:      rc.Palette.Neutral,
		Title:      title,
		TitleLink:  consoleLink(env, rc, "/codecommit/home#/repository/"+repoName),
		Text:       text,
		Fields:     nonEmpty(fields...),
		MrkdwnIn:   []string{"title", "text"},
		Ts:         epochAt(env, "time"),
	}), nil
}

func (c *codeCommitRepository) headCommitMessage(ctx context.Context, repoName string, branchName string) (string, error) {
	branch, err := c.commits.GetBranchWithContext(ctx, &codecommit.GetBranchInput{
		RepositoryName: aws.String(repoName),
		BranchName:     aws.String(branchName),
	})
	if err != nil {
		return "", fmt.Errorf("GetBranch: %w", err)
	}

	if branch.Branch == nil || branch.Branch.CommitId == nil {
		return "", fmt.Errorf("GetBranch: no commit for branch %s", branchName)
	}

	commit, err := c.commits.GetCommitWithContext(ctx, &codecommit.GetCommitInput{
		RepositoryName: aws.String(repoName),
		CommitId:       branch.Branch.CommitId,
	})
	if err != nil {
		return "", fmt.Errorf("GetCommit: %w", err)
	}

	if commit.Commit == nil {
		return "", fmt.Errorf("GetCommit: no commit %s", *branch.Branch.CommitId)
	}

	return strings.TrimSpace(aws.StringValue(commit.Commit.Message)), nil
}
