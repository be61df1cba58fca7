package interpreters

import (
	"context"
	"fmt"
	"strings"

	"github.com/function61/aws-to-slack/pkg/awsevent"
	"github.com/function61/aws-to-slack/pkg/interpreter"
	"github.com/function61/aws-to-slack/pkg/slackmsg"
)

// https://docs.aws.amazon.com/ses/latest/DeveloperGuide/notification-contents.html
type ses struct {
	notificationType string
	render           func(env *awsevent.Envelope, palette slackmsg.Palette) slackmsg.Attachment
}

func (s *ses) Name() string {
	return "ses-" + strings.ToLower(s.notificationType)
}

func (s *ses) Matches(env *awsevent.Envelope) bool {
	return env.GetString("notificationType", "") == s.notificationType
}

func (s *ses) Render(_ context.Context, env *awsevent.Envelope, rc interpreter.RenderContext) (interpreter.Result, error) {
	attachment := s.render(env, rc.Palette)
	attachment.Title = env.GetString("mail.commonHeaders.subject", "")
	attachment.Fields = append(sesMailFields(env), attachment.Fields...)
	attachment.Ts = epochAt(env, "mail.timestamp")

	return rendered(env, rc, attachment), nil
}

func newSesReceived() *ses {
	return &ses{"Received", func(env *awsevent.Envelope, palette slackmsg.Palette) slackmsg.Attachment {
		return slackmsg.Attachment{
			Fallback:   "New email received from SES",
			Color:      palette.Accent,
			AuthorName: "Amazon SES",
			Text:       env.GetString("content", ""),
		}
	}}
}

func newSesBounce() *ses {
	return &ses{"Bounce", func(env *awsevent.Envelope, palette slackmsg.Palette) slackmsg.Attachment {
		bounceType := env.GetString("bounce.bounceType", "")
		bounceSubType := env.GetString("bounce.bounceSubType", "")

		color := palette.Neutral
		switch bounceType {
		case "Transient":
			color = palette.Accent
		case "Permanent":
			color = palette.Critical
		}

		summary := fmt.Sprintf("Bounce: %s - %s", bounceType, bounceSubType)

		return slackmsg.Attachment{
			Fallback:   summary,
			Color:      color,
			AuthorName: "Amazon SES - " + summary,
			Text:       strings.Join(sesRecipients(env, "bounce.bouncedRecipients"), "\n"),
			Fields: nonEmpty(
				short("BounceType", bounceType),
				short("BounceSubType", bounceSubType)),
		}
	}}
}

func newSesComplaint() *ses {
	return &ses{"Complaint", func(env *awsevent.Envelope, palette slackmsg.Palette) slackmsg.Attachment {
		userAgent := env.GetString("complaint.userAgent", "")

		return slackmsg.Attachment{
			Fallback:   "Complaint: " + userAgent,
			Color:      palette.Critical,
			AuthorName: "Amazon SES - Complaint: " + userAgent,
			Text:       strings.Join(sesRecipients(env, "complaint.complainedRecipients"), "\n"),
			Fields: nonEmpty(
				short("UserAgent", userAgent),
				short("Complaint Type", env.GetString("complaint.complaintFeedbackType", ""))),
		}
	}}
}

func sesMailFields(env *awsevent.Envelope) []slackmsg.Field {
	return nonEmpty(
		short("From", env.GetString("mail.source", "")),
		short("To", strings.Join(env.GetStrings("mail.destination"), ",\n")))
}

func sesRecipients(env *awsevent.Envelope, path string) []string {
	recipients := []string{}
	for i := 0; env.Has(fmt.Sprintf("%s[%d]", path, i)); i++ {
		recipient := fmt.Sprintf("%s[%d].", path, i)

		line := env.GetString(recipient+"emailAddress", "")
		if diagnostic := env.GetString(recipient+"diagnosticCode", ""); diagnostic != "" {
			line += ": " + diagnostic
		}

		recipients = append(recipients, line)
	}
	return recipients
}
