package condition

// Traversed is true once the named storyboard element has completed at
// least one run through its state machine (§4.6).
type Traversed struct {
	Element string
}

func (c Traversed) Evaluate(ctx Context) (bool, error) {
	done, ok := ctx.Traversed(c.Element)
	if !ok {
		return false, nil
	}
	return done, nil
}
