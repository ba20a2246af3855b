package cart

import "strings"

// Action identifies what a click on a card icon asks for.
type Action int

const (
	ActionNone Action = iota
	ActionIncrement
	ActionDecrement
	ActionRemove
	ActionToggleLike
)

// Icon classes recognised on click targets.
const (
	ClassIncrement = "fa-plus-circle"
	ClassDecrement = "fa-minus-circle"
	ClassRemove    = "fa-trash-alt"
	ClassLike      = "fa-heart"
)

var actionNames = map[Action]string{
	ActionNone:       "none",
	ActionIncrement:  "increment",
	ActionDecrement:  "decrement",
	ActionRemove:     "remove",
	ActionToggleLike: "like",
}

// String returns the wire name of the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction maps a wire name back to an Action. Unknown names yield ActionNone.
func ParseAction(name string) Action {
	name = strings.ToLower(strings.TrimSpace(name))
	for action, candidate := range actionNames {
		if candidate == name {
			return action
		}
	}
	return ActionNone
}

// Classify maps the class list of a click target to an action. The icon
// classes are checked in a fixed order so a target carrying several of them
// resolves the same way every time.
func Classify(classes []string) Action {
	has := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		has[c] = struct{}{}
	}
	switch {
	case contains(has, ClassIncrement):
		return ActionIncrement
	case contains(has, ClassDecrement):
		return ActionDecrement
	case contains(has, ClassRemove):
		return ActionRemove
	case contains(has, ClassLike):
		return ActionToggleLike
	default:
		return ActionNone
	}
}

// IconClass returns the icon class that triggers the action, or "" for ActionNone.
func IconClass(a Action) string {
	switch a {
	case ActionIncrement:
		return ClassIncrement
	case ActionDecrement:
		return ClassDecrement
	case ActionRemove:
		return ClassRemove
	case ActionToggleLike:
		return ClassLike
	default:
		return ""
	}
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
