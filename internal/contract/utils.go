package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/chartaxis/schema"
)

// Color variables for console output.
var (
	FullColor   = color.New(color.FgRed, color.Bold) // FullColor marks a full relayout.
	LightColor  = color.New(color.FgYellow)          // LightColor marks a relayout without autoscale.
	CursorColor = color.New(color.FgCyan)            // CursorColor marks crosshair-only repaints.
	AddColor    = color.New(color.FgGreen)           // AddColor marks rows added at the right edge.
	EditColor   = color.New(color.FgMagenta)         // EditColor marks rows revised in place.
	DropColor   = color.New(color.FgRed)             // DropColor marks rows removed.
)

// GetLevelLabel returns a colored invalidation level for console output (table).
func GetLevelLabel(level schema.InvalidationLevel) string {
	text := level.String()
	switch level {
	case schema.InvalidationFull:
		return FullColor.Sprint(text)
	case schema.InvalidationLight:
		return LightColor.Sprint(text)
	case schema.InvalidationCursor:
		return CursorColor.Sprint(text)
	default:
		return text
	}
}

// GetChangeLabel returns a colored change kind for console output (table).
func GetChangeLabel(kind schema.ChangeKind) string {
	text := string(kind)
	switch kind {
	case schema.ChangeAppended, schema.ChangeReplaced:
		return AddColor.Sprint(text)
	case schema.ChangeAmended, schema.ChangeHistory:
		return EditColor.Sprint(text)
	case schema.ChangeTrimmed, schema.ChangeCleared:
		return DropColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetDBFilePath returns the path to the SQLite DB file for bar storage.
func GetDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".chartaxis_bars.db"
	}
	return filepath.Join(homeDir, ".chartaxis_bars.db")
}

// TruncatePath truncates a path or name to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
