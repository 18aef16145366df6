package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manav03panchal/aircare/internal/model"
)

// TeamsFormatter renders a notification as a Teams MessageCard. Scalar
// fields of the visit become facts; the crew and task lists get their own
// bulleted sections so long lists stay readable in a channel.
type TeamsFormatter struct{}

// teamsListFields hold comma-joined lists.
var teamsListFields = map[string]bool{
	"Assigned Employees": true,
	"Tasks":              true,
}

type teamsPayload struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections,omitempty"`
}

type teamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	Text             string      `json:"text,omitempty"`
	Facts            []teamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (f *TeamsFormatter) Format(n *model.Notification) ([]byte, error) {
	visit := teamsSection{
		ActivityTitle:    n.Title,
		ActivitySubtitle: fmt.Sprintf("%s | %s", Footer, n.Timestamp.Format("Jan 2, 3:04 PM")),
		Text:             n.Message,
		Markdown:         true,
	}
	var lists []teamsSection
	for _, field := range n.Fields {
		if teamsListFields[field.Name] {
			lists = append(lists, teamsSection{
				ActivityTitle: field.Name,
				Text:          bulletList(field.Value),
				Markdown:      true,
			})
			continue
		}
		visit.Facts = append(visit.Facts, teamsFact{Name: field.Name, Value: field.Value})
	}

	return json.Marshal(teamsPayload{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: fmt.Sprintf("%06X", colorOf(n)),
		Summary:    n.Title,
		Sections:   append([]teamsSection{visit}, lists...),
	})
}

// bulletList turns "a, b" into markdown bullets. An empty list renders as a
// single dash.
func bulletList(joined string) string {
	if strings.TrimSpace(joined) == "" {
		return "-"
	}
	items := strings.Split(joined, ",")
	for i, item := range items {
		items[i] = "- " + strings.TrimSpace(item)
	}
	return strings.Join(items, "\n")
}

func (f *TeamsFormatter) ContentType() string {
	return "application/json"
}
