package cart

// ClassLiked marks a liked icon.
const ClassLiked = "liked"

// LikedColor is the highlight applied to a liked icon.
const LikedColor = "red"

// Icon is a clickable affordance whose look can be changed.
type Icon interface {
	HasClass(string) bool
	AddClass(string)
	RemoveClass(string)
	// SetStyle sets an inline style property; an empty value removes it.
	SetStyle(prop, value string)
}

// ToggleLike flips the liked state of icon and returns the new state. It
// touches nothing but the icon itself.
func ToggleLike(icon Icon) bool {
	if icon == nil {
		return false
	}
	liked := !icon.HasClass(ClassLiked)
	SetLiked(icon, liked)
	return liked
}

// SetLiked puts icon in the given liked state.
func SetLiked(icon Icon, liked bool) {
	if icon == nil {
		return
	}
	if liked {
		icon.AddClass(ClassLiked)
		icon.SetStyle("color", LikedColor)
		return
	}
	icon.RemoveClass(ClassLiked)
	icon.SetStyle("color", "")
}
