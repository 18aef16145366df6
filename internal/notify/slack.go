package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manav03panchal/aircare/internal/model"
)

// SlackFormatter formats notifications for Slack webhooks.
type SlackFormatter struct{}

type slackPayload struct {
	Text        string        `json:"text,omitempty"`
	Blocks      []slackBlock  `json:"blocks,omitempty"`
	Attachments []slackAttach `json:"attachments,omitempty"`
}

type slackBlock struct {
	Type     string           `json:"type"`
	Text     *slackBlockText  `json:"text,omitempty"`
	Fields   []slackBlockText `json:"fields,omitempty"`
	Elements []slackBlockText `json:"elements,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackAttach struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// slackMaxFields is the most fields one section block accepts.
const slackMaxFields = 10

// Format converts a notification to Slack block kit.
func (f *SlackFormatter) Format(n *model.Notification) ([]byte, error) {
	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackBlockText{Type: "plain_text", Text: n.Title},
		},
	}
	if n.Message != "" {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackBlockText{Type: "mrkdwn", Text: slackEscape(n.Message)},
		})
	}

	var fields []slackBlockText
	for _, field := range n.Fields {
		fields = append(fields, slackBlockText{
			Type: "mrkdwn",
			Text: fmt.Sprintf("*%s*\n%s", slackEscape(field.Name), slackEscape(field.Value)),
		})
		if len(fields) == slackMaxFields {
			blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
			fields = nil
		}
	}
	if len(fields) > 0 {
		blocks = append(blocks, slackBlock{Type: "section", Fields: fields})
	}

	blocks = append(blocks, slackBlock{
		Type: "context",
		Elements: []slackBlockText{{
			Type: "mrkdwn",
			Text: fmt.Sprintf("%s | %s", Footer, n.Timestamp.Format("Jan 2, 3:04 PM")),
		}},
	})

	payload := slackPayload{
		Text:   fmt.Sprintf("*%s*", n.Title),
		Blocks: blocks,
		Attachments: []slackAttach{{
			Color:    colorToHex(colorOf(n)),
			Fallback: n.Title,
		}},
	}

	return json.Marshal(payload)
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

// colorToHex converts an integer color to hex string.
func colorToHex(color int) string {
	return fmt.Sprintf("#%06X", color)
}

// slackEscape escapes special characters for Slack mrkdwn.
func slackEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
