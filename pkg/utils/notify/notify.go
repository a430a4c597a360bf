// Package notify renders console status messages for the autolocal CLI.
//
// Console output stays terse on purpose: one styled line per event, with the
// run identifier appended to pass/fail lines so a user can find the matching
// durable log file. Everything verbose belongs in the run log, not here.
package notify

import (
	"fmt"
	"io"
	"os"

	fcolor "github.com/fatih/color"
)

// Message type constants. Each type determines the line's color and prefix.
const (
	// ErrorType represents an error message (red, FAIL prefix).
	ErrorType MessageType = iota
	// WarningType represents a warning message (yellow, WARN prefix).
	WarningType
	// ActivityType represents an activity/progress message (default color).
	ActivityType
	// SuccessType represents a success message (green, PASS prefix).
	SuccessType
	// InfoType represents an informational message (blue, INFO prefix).
	InfoType
	// TitleType represents a title/header message (bold).
	TitleType
)

// MessageType defines the type of notification message.
type MessageType int

// Message represents a notification message to be displayed to the user.
type Message struct {
	// Type determines the message styling (color, prefix).
	Type MessageType
	// Content is the main message text to display.
	Content string
	// RunID, when non-empty, is appended as a bracketed suffix so the console
	// line can be correlated with its durable log file.
	RunID string
	// Writer is the output destination. If nil, defaults to os.Stdout.
	Writer io.Writer
	// Args are format arguments for Content if it contains format specifiers.
	Args []any
}

// Errorf writes an error message to the writer.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning message to the writer.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Activityf writes an activity/progress message to the writer.
func Activityf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: writer})
}

// Infof writes an informational message to the writer.
func Infof(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: InfoType, Content: format, Args: args, Writer: writer})
}

// Titlef writes a bold title/header message to the writer.
func Titlef(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: TitleType, Content: format, Args: args, Writer: writer})
}

// Passf writes a terse PASS line carrying the run identifier.
func Passf(writer io.Writer, runID, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, RunID: runID, Writer: writer})
}

// Failf writes a terse FAIL line carrying the run identifier.
func Failf(writer io.Writer, runID, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, RunID: runID, Writer: writer})
}

// WriteMessage writes a formatted message based on the message configuration.
//
// For simpler use cases, prefer the convenience functions: Errorf(), Warningf(),
// Activityf(), Infof(), Titlef(), Passf() and Failf().
func WriteMessage(msg Message) {
	if msg.Writer == nil {
		msg.Writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	if msg.RunID != "" {
		content = fmt.Sprintf("%s [%s]", content, msg.RunID)
	}

	config := getMessageConfig(msg.Type)

	_, err := config.color.Fprintf(msg.Writer, "%s%s\n", config.prefix, content)
	handleNotifyError(err)
}

// messageConfig holds the styling configuration for each message type.
type messageConfig struct {
	prefix string
	color  *fcolor.Color
}

// getMessageConfig returns the styling configuration for a given message type.
func getMessageConfig(msgType MessageType) messageConfig {
	switch msgType {
	case ErrorType:
		return messageConfig{prefix: "FAIL: ", color: fcolor.New(fcolor.FgRed)}
	case WarningType:
		return messageConfig{prefix: "WARN: ", color: fcolor.New(fcolor.FgYellow)}
	case ActivityType:
		return messageConfig{prefix: "► ", color: fcolor.New(fcolor.Reset)}
	case SuccessType:
		return messageConfig{prefix: "PASS: ", color: fcolor.New(fcolor.FgGreen)}
	case InfoType:
		return messageConfig{prefix: "INFO: ", color: fcolor.New(fcolor.FgBlue)}
	case TitleType:
		return messageConfig{prefix: "", color: fcolor.New(fcolor.Reset, fcolor.Bold)}
	default:
		return messageConfig{prefix: "", color: fcolor.New(fcolor.Reset)}
	}
}

// handleNotifyError handles errors that occur during notification printing.
// Errors are logged to stderr rather than returned to avoid disrupting the
// user experience.
func handleNotifyError(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "notify: failed to print message: %v\n", err)
	}
}
