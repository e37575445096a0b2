package decision

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
)

// Prompt asks the operator to resolve each conflict with an interactive
// select. With Accessible set the form degrades to plain line-based input,
// which also makes it scriptable.
type Prompt struct {
	In         io.Reader
	Out        io.Writer
	Accessible bool
}

// Resolve implements Decider. Cancelling the form is an Abort.
func (p *Prompt) Resolve(ctx context.Context, c Conflict) (Decision, error) {
	choice := Abort.String()
	options := []huh.Option[string]{
		huh.NewOption("Abort the installation", Abort.String()),
		huh.NewOption("Retry the lookup", Retry.String()),
		huh.NewOption("Ignore and continue", Ignore.String()),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Catalog %s conflict", c.Type)).
				Description(c.Message()).
				Options(options...).
				Value(&choice),
		),
	).WithAccessible(p.Accessible)
	if p.In != nil {
		form = form.WithInput(p.In)
	}
	if p.Out != nil {
		form = form.WithOutput(p.Out)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Abort, nil
		}
		return Abort, fmt.Errorf("conflict prompt failed: %w", err)
	}
	return Parse(choice)
}
