package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Render builds the prompt text of component.
func Render(ctx context.Context, component templ.Component) (string, error) {
	var builder strings.Builder
	if err := component.Render(ctx, &builder); err != nil {
		return "", err
	}
	return builder.String(), nil
}

// text writes literal prompt fragments.
func text(parts ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, part := range parts {
			if _, err := io.WriteString(w, part); err != nil {
				return err
			}
		}
		return nil
	})
}

// jsonBlock writes raw as an indented fenced JSON block.
func jsonBlock(raw json.RawMessage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		if len(raw) == 0 {
			buf.WriteString("null")
		} else if err := json.Indent(&buf, raw, "", "    "); err != nil {
			return err
		}
		_, err := io.WriteString(w, "```json\n"+buf.String()+"\n```\n")
		return err
	})
}

// join renders components one after another.
func join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
