package keys

// DisplayName returns the label shown to the user for k. The grave key's
// platform name means little to most people, so it is shown as "Tilde".
func DisplayName(k Key) string {
	switch k {
	case Grave:
		return "Tilde"
	default:
		return k.String()
	}
}

// ShortcutLabel renders the full combination bound to k.
func ShortcutLabel(k Key) string {
	return Modifier.String() + " + " + DisplayName(k)
}
