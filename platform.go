package main

import (
	"os"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Platform describes the host the view runs on
type Platform struct {
	GOOS string
	Term string
}

func detectPlatform() Platform {
	return Platform{
		GOOS: runtime.GOOS,
		Term: os.Getenv("TERM"),
	}
}

// IsIOS reports whether we run on iOS (a-Shell, iSH and friends), where
// terminal scrolling under the soft keyboard is unreliable.
func (p Platform) IsIOS() bool {
	return p.GOOS == "ios"
}

// SmoothScrollUnreliable reports whether auto-scroll has to stay off
func (p Platform) SmoothScrollUnreliable() bool {
	return p.IsIOS() || strings.EqualFold(p.Term, "dumb")
}

// Clipboard receives copied message text
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// selectOrCopy copies text and reports whether the event was handled.
// Without a usable clipboard the event is left to the terminal, which
// keeps its own selection behaviour.
func selectOrCopy(cb Clipboard, text string) bool {
	if cb == nil || text == "" {
		return false
	}
	if err := cb.WriteAll(text); err != nil {
		return false
	}
	return true
}
