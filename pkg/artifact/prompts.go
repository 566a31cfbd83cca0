package artifact

import "fmt"

const bulletinSystemPrompt = "You are a helpful assistant tasked with creating a concise and informative bulletin board for a group."

const todoSystemPrompt = "You are a helpful assistant tasked with creating and managing a to-do list for a group."

const bulletinConstraints = `1. Include at most 2 items per user.
2. Balance the number of items across users.
3. If there is a new item, incorporate it prominently.
4. Prioritize recent and important information.
5. Only add or remove items when the new information justifies it.
6. Use emoji to make the board engaging.
7. Separate each user's section with exactly one newline.
8. Return only the bulletin board content, with no extra commentary.`

const todoConstraints = `1. The list must contain no more than 10 items total.
2. Format each item as a Markdown checkbox, like this: '- [ ] Task description'.
3. Group similar tasks together.
4. If there is a new item, make sure to incorporate it.
5. Prioritize the most important and urgent tasks.
6. Only add or remove items when the new information justifies it.
7. Return only the to-do list.`

// buildPrompts yields the fixed system instruction and the user instruction
// embedding the digest and the enumerated constraint set for the kind.
func buildPrompts(kind Kind, updating bool, digest string) (system string, user string) {
	verb := "create"
	if updating {
		verb = "update"
	}
	switch kind {
	case KindTodo:
		user = fmt.Sprintf(
			"Based on the following information about group members and any new item, %s a concise and organized to-do list for the group, following these rules:\n%s\n\n%s",
			verb, todoConstraints, digest)
		return todoSystemPrompt, user
	default:
		user = fmt.Sprintf(
			"Based on the following information about group members and any new item, %s a concise and informative bulletin board for the group, following these rules:\n%s\n\n%s",
			verb, bulletinConstraints, digest)
		return bulletinSystemPrompt, user
	}
}
