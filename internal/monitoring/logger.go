// Package monitoring holds the diagnostic logger shared by the resolution
// layers.
package monitoring

import (
	"log"
	"strconv"
	"strings"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// LogTrackIDs logs msg followed by a comma separated list of track ids.
// Nothing is logged for an empty list.
func LogTrackIDs(msg string, ids []int) {
	if len(ids) == 0 {
		return
	}
	Logf("%s: %s", msg, JoinIDs(ids))
}

// JoinIDs renders ids as "3, 7, 12".
func JoinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ", ")
}
