package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Suggestions returns recovery hints for err. Coded errors carry their own;
// for others a few common failures are recognized by message.
func Suggestions(err error) []string {
	if err == nil {
		return nil
	}
	if spErr, ok := errors.As(err); ok {
		if spErr.Code == errors.ErrCodeFileNotFound {
			return append(append([]string(nil), spErr.Suggestions...), SuggestNextSteps())
		}
		return spErr.Suggestions
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "no such file or directory"):
		return []string{"Check the path, " + SuggestNextSteps()}
	case strings.Contains(errMsg, "permission denied"):
		return []string{"Check file permissions and ensure you have access to the required files/directories"}
	case strings.Contains(errMsg, "address already in use"):
		return []string{"Another process is listening on that port, pass --port to pick another"}
	case strings.Contains(errMsg, "unknown format"):
		return []string{"Use --format " + strings.Join(Formats, ", ")}
	}
	return nil
}

// RenderError writes err and its suggestions for a terminal.
func RenderError(w io.Writer, err error, noColor bool) {
	if err == nil {
		return
	}
	s := NewStyles(w, noColor)

	fmt.Fprintf(w, "%s %s\n", s.Error.Render("Error:"), headline(err))
	for _, suggestion := range Suggestions(err) {
		fmt.Fprintf(w, "  %s %s\n", s.Muted.Render("hint:"), suggestion)
	}
}

// headline is the error text without the suggestion block that coded
// errors append to Error(); RenderError prints those as hints instead.
func headline(err error) string {
	spErr, ok := errors.As(err)
	if !ok || len(spErr.Suggestions) == 0 {
		return err.Error()
	}
	full := err.Error()
	if i := strings.Index(full, "\n\nSuggestions:"); i >= 0 {
		return full[:i]
	}
	return full
}
