package agentlog

import "time"

// Role tags a log entry as authored by the user side or the assistant side
// of a conversation. The runtime also stores system and tool entries; the
// store decodes those but downstream components ignore them.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// SendMessageTool is the only tool call whose arguments carry user-visible
// assistant output. All other tool calls are runtime-internal.
const SendMessageTool = "send_message"

// ToolCall is a function invocation recorded on an assistant turn. Arguments
// is the raw JSON argument bundle as stored by the runtime.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Entry is one decoded message-log entry. The union is tagged by Role:
// user turns carry Text (the runtime's JSON payload, decoded further by the
// classifier) and CreatedAt; assistant turns carry ToolCalls.
type Entry struct {
	Role      Role       `json:"role"`
	Text      string     `json:"text,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Passage is one archival memory passage.
type Passage struct {
	Text string `json:"text"`
}

// TimeWindow bounds a history query to [Start, End). Both bounds absent
// means the store's default recent-activity slice; the store never scans
// full history in that case.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// IsZero reports whether the window places no bounds at all.
func (w TimeWindow) IsZero() bool {
	return w.Start == nil && w.End == nil
}

// CreateAgentRequest describes a new agent to provision in the runtime.
type CreateAgentRequest struct {
	Name    string
	Persona string
	Human   string
}

// AgentData is the bounded per-agent view handed to classification:
// message entries newest-first, plus archival passages in store order.
type AgentData struct {
	Entries  []Entry
	Passages []Passage
}
