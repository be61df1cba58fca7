// Message structures understood by Slack incoming webhooks
package slackmsg

import (
	"time"
)

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type Attachment struct {
	Fallback   string   `json:"fallback,omitempty"`
	Color      string   `json:"color,omitempty"`
	Pretext    string   `json:"pretext,omitempty"`
	AuthorName string   `json:"author_name,omitempty"`
	AuthorLink string   `json:"author_link,omitempty"`
	Title      string   `json:"title,omitempty"`
	TitleLink  string   `json:"title_link,omitempty"`
	Text       string   `json:"text,omitempty"`
	Fields     []Field  `json:"fields,omitempty"`
	ImageUrl   string   `json:"image_url,omitempty"`
	Footer     string   `json:"footer,omitempty"`
	Ts         int64    `json:"ts,omitempty"`
	MrkdwnIn   []string `json:"mrkdwn_in,omitempty"`
}

func (a *Attachment) hasContent() bool {
	return a.Title != "" || a.Text != "" || a.Fallback != "" || a.Pretext != "" || len(a.Fields) > 0 || a.ImageUrl != ""
}

type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

func Single(attachment Attachment) *Message {
	return &Message{
		Attachments: []Attachment{attachment},
	}
}

// nil message, or one with nothing that would show up in Slack. overrides like channel
// do not count as content.
func (m *Message) IsEmpty() bool {
	if m == nil {
		return true
	}

	if m.Text != "" {
		return false
	}

	for _, attachment := range m.Attachments {
		if attachment.hasContent() {
			return false
		}
	}

	return true
}

func EpochSeconds(ts time.Time) int64 {
	return ts.Unix()
}

// color classifications. values can be Slack's named colors or hex codes
type Palette struct {
	Critical string `json:"critical"`
	Warning  string `json:"warning"`
	Ok       string `json:"ok"`
	Accent   string `json:"accent"`
	Neutral  string `json:"neutral"`
}

func DefaultPalette() Palette {
	return Palette{
		Critical: "danger",  // #FF324D
		Warning:  "warning", // #FFD602
		Ok:       "good",    // #8CC800
		Accent:   "#1E90FF",
		Neutral:  "#A8A8A8",
	}
}

// Slack's link markup
func Link(text string, url string) string {
	if url == "" {
		return text
	}

	return "<" + url + "|" + text + ">"
}
