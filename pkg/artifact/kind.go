package artifact

import "github.com/pkg/errors"

// Kind selects which derived group artifact is being synthesized.
type Kind string

const (
	KindTodo     Kind = "todo"
	KindBulletin Kind = "bulletin"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTodo, KindBulletin:
		return Kind(s), nil
	}
	return "", errors.Errorf("unknown artifact kind %q", s)
}

// StorageKey is the literal persisted key for a group's artifact slot.
func StorageKey(group string, kind Kind) string {
	return group + "_" + string(kind)
}
