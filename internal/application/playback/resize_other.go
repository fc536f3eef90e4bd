//go:build !unix

package playback

import "os"

func resizeSignals() (<-chan os.Signal, func()) {
	return nil, func() {}
}
