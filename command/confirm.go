package command

// Confirmation is a destructive command waiting for the user's consent.
// Nothing is emitted until the owner accepts it.
type Confirmation struct {
	Prompt  string  `json:"prompt"`
	Command Command `json:"-"`
}

// Wire exposes the pending command text for display.
func (c Confirmation) Wire() string {
	if c.Command == nil {
		return ""
	}
	return c.Command.Wire()
}
