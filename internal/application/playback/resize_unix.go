//go:build unix

package playback

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// resizeSignals delivers a value whenever the terminal window changes size.
func resizeSignals() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, unix.SIGWINCH)
	return ch, func() { signal.Stop(ch) }
}
