package gateway

import "context"

// Type sends text the way a person would type it at a prompt.
//
// With enter unset the text is pasted bracketed, so newlines stay data
// (editors, multi-line REPL input). With enter set the paste is unbracketed
// and followed by an Enter key, which submits the line in a shell.
func (g *Gateway) Type(ctx context.Context, session, text string, enter bool) error {
	if err := g.SendText(ctx, session, text, !enter); err != nil {
		return err
	}
	if enter {
		return g.SendKeys(ctx, session, "Enter")
	}
	return nil
}
