//go:build !linux && !darwin

package interaction

import "golang.org/x/term"

func enableRawMode(fd int) (func() error, error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() error { return term.Restore(fd, state) }, nil
}
