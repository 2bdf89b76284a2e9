// Package player is the automation boundary to the host Music
// application. All AppleScript lives here; the rest of the server only
// sees typed queries and commands.
package player

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotRunning means the player application is not running (or
	// automation access was refused), so no state can be queried.
	ErrNotRunning = errors.New("player not running")
	// ErrScriptFailed means osascript itself failed.
	ErrScriptFailed = errors.New("script execution failed")
	// ErrNoArtwork means the queried entity exists but carries no
	// embedded artwork.
	ErrNoArtwork = errors.New("no embedded artwork")
	// ErrNotFound means the named album, artist or playlist does not
	// exist in the library.
	ErrNotFound = errors.New("entity not found")
)

const notRunningMarker = "NOT_RUNNING"

// runScript executes an AppleScript via osascript and returns trimmed
// stdout. A NOT_RUNNING marker from the running-check preamble maps to
// ErrNotRunning.
func runScript(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "Not authorized") || strings.Contains(msg, "-1743") {
			return "", fmt.Errorf("%w: automation access denied", ErrNotRunning)
		}
		return "", fmt.Errorf("%w: %s", ErrScriptFailed, msg)
	}

	out := strings.TrimSpace(stdout.String())
	if out == notRunningMarker {
		return "", ErrNotRunning
	}
	return out, nil
}

// escapeString makes a free-text value safe for embedding inside a
// double-quoted AppleScript string literal. Every user-supplied name
// (album, artist, playlist) must pass through here.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
