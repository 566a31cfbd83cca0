package classify

import (
	"encoding/json"
	"strings"

	"github.com/hearth-labs/hearth/pkg/agentlog"
)

// Kind tags an extracted record by its origin in the agent log.
type Kind string

const (
	KindUserMessage      Kind = "user_message"
	KindAssistantMessage Kind = "assistant_message"
	KindArchivalMemory   Kind = "archival_memory"
)

// Record is one classified unit of conversational content. Timestamp is the
// runtime's wall-clock string for user messages and empty otherwise.
// Records are recomputed on every synthesis call and never persisted.
type Record struct {
	Username  string
	Kind      Kind
	Text      string
	Timestamp string
}

// userPayload is the JSON blob the runtime stores as the text of user-role
// entries. Only entries whose type marker is "user_message" are genuine
// user-authored messages; the runtime mixes in system-injected user-role
// entries (heartbeats, login events) that must not leak into digests.
type userPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type sendMessageArgs struct {
	Message string `json:"message"`
}

// Classify turns a raw agent-log view into chronological extracted records.
// Entries arrive newest-first from the store and are walked in reverse to
// restore chronological order. Entries that fail to decode are skipped, not
// errored: one corrupt entry must not blank out the whole history.
// Archival passages pass through unconditionally, after the messages.
func Classify(username string, data agentlog.AgentData) []Record {
	records := []Record{}
	for i := len(data.Entries) - 1; i >= 0; i-- {
		entry := data.Entries[i]
		switch entry.Role {
		case agentlog.RoleUser:
			var payload userPayload
			if err := json.Unmarshal([]byte(entry.Text), &payload); err != nil {
				continue
			}
			if payload.Type != "user_message" {
				continue
			}
			records = append(records, Record{
				Username:  username,
				Kind:      KindUserMessage,
				Text:      payload.Message,
				Timestamp: payload.Time,
			})
		case agentlog.RoleAssistant:
			for _, tc := range entry.ToolCalls {
				if tc.Name != agentlog.SendMessageTool {
					continue
				}
				var args sendMessageArgs
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					continue
				}
				if args.Message == "" {
					continue
				}
				records = append(records, Record{
					Username: username,
					Kind:     KindAssistantMessage,
					Text:     args.Message,
				})
			}
		}
	}
	for _, p := range data.Passages {
		records = append(records, Record{
			Username: username,
			Kind:     KindArchivalMemory,
			Text:     p.Text,
		})
	}
	return records
}

// FilterActionable keeps only records whose text mentions a todo or task,
// case-insensitively. The to-do pipeline bounds its digest volume with this
// filter; the bulletin pipeline takes all records and caps passages instead.
func FilterActionable(records []Record) []Record {
	out := []Record{}
	for _, r := range records {
		lower := strings.ToLower(r.Text)
		if strings.Contains(lower, "todo") || strings.Contains(lower, "task") {
			out = append(out, r)
		}
	}
	return out
}
