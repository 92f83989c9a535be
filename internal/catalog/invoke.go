package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// AuthHint is appended to error output whose message mentions authentication.
const AuthHint = "Please make sure you are authenticated with Puter."

// Invoke runs the standard example sequence: call the capability, then write
// either format(result) or "Error: <message>" into section. It is the single
// place capability errors are caught and rendered.
func Invoke[T any](ctx context.Context, section Section, logger *zap.Logger, call func(context.Context) (T, error), format func(T) string) {
	result, err := call(ctx)
	if err != nil {
		section.Write(FormatError(err))
		logger.Warn("example action failed", zap.Error(err))
		return
	}
	section.Write(format(result))
}

// FormatError renders a capability failure.
func FormatError(err error) string {
	msg := err.Error()
	text := "Error: " + msg
	if strings.Contains(msg, "authentication") {
		text += "\n" + AuthHint
	}
	return text
}
