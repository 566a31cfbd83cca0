package artifact

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hearth-labs/hearth/pkg/classify"
)

// maxBulletinPassages caps how many archival passages one member can feed
// into a bulletin digest. The to-do digest has no passage cap; its volume
// is bounded by the todo/task keyword filter upstream.
const maxBulletinPassages = 16

// DigestInput is everything the digest is assembled from.
type DigestInput struct {
	Group    string
	Kind     Kind
	Prior    string
	HasPrior bool
	Records  map[string][]classify.Record
	NewItem  string
}

// BuildDigest renders the deterministic intermediate text fed to the
// generative backend. Members are emitted in sorted order so identical
// inputs produce an identical digest. The prior artifact text, when
// present, is embedded verbatim: that is what makes a synthesis an
// incremental update rather than a regeneration from scratch. A new item,
// when present, ends the digest under an explicit label so the generative
// step cannot lose it.
func BuildDigest(in DigestInput) string {
	var b strings.Builder

	switch in.Kind {
	case KindTodo:
		fmt.Fprintf(&b, "To-Do List for %s\n\n", in.Group)
	default:
		fmt.Fprintf(&b, "Group Bulletin Board for %s\n\n", in.Group)
	}

	if in.HasPrior {
		b.WriteString("Existing content:\n")
		b.WriteString(in.Prior)
		b.WriteString("\n\n")
	}

	usernames := make([]string, 0, len(in.Records))
	for username := range in.Records {
		usernames = append(usernames, username)
	}
	sort.Strings(usernames)

	for _, username := range usernames {
		writeMemberSection(&b, username, in.Records[username], in.Kind)
	}

	if in.NewItem != "" {
		fmt.Fprintf(&b, "\nNew item to be added: %s\n", in.NewItem)
	}
	return b.String()
}

func writeMemberSection(b *strings.Builder, username string, records []classify.Record, kind Kind) {
	var messages, passages []classify.Record
	for _, r := range records {
		if r.Kind == classify.KindArchivalMemory {
			passages = append(passages, r)
		} else {
			messages = append(messages, r)
		}
	}

	fmt.Fprintf(b, "User: %s\n", username)
	fmt.Fprintf(b, "Recent messages: %d\n", len(messages))
	fmt.Fprintf(b, "Recent archival memory passages: %d\n", len(passages))

	if kind == KindTodo {
		b.WriteString("Recent todo-related messages:\n")
	} else {
		b.WriteString("Recent messages:\n")
	}
	for _, r := range messages {
		switch r.Kind {
		case classify.KindUserMessage:
			fmt.Fprintf(b, "User (%s): %s\n", r.Timestamp, r.Text)
		case classify.KindAssistantMessage:
			fmt.Fprintf(b, "Assistant: %s\n", r.Text)
		}
	}
	b.WriteString("\n")

	if len(passages) > 0 {
		if kind == KindTodo {
			b.WriteString("Recent todo-related memories:\n")
		} else {
			b.WriteString("Recent archival memories:\n")
		}
		capped := passages
		if kind == KindBulletin && len(capped) > maxBulletinPassages {
			capped = capped[:maxBulletinPassages]
		}
		for _, r := range capped {
			fmt.Fprintf(b, "- %s\n", r.Text)
		}
	}
	b.WriteString("\n")
}
