//go:build linux || darwin

package e2e

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/creack/pty"
)

// Terminal is a pseudo terminal for driving the interactive player in-process.
// The program reads keys from and draws on TTY; the test types and reads on
// the other end.
type Terminal struct {
	TTY *os.File

	ptmx   *os.File
	rows   int
	cols   int
	mu     sync.Mutex
	output bytes.Buffer
}

// NewTerminal opens a rows x cols pseudo terminal and starts capturing
// everything drawn on it.
func NewTerminal(rows, cols int) (*Terminal, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open pty: %w", err)
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}); err != nil {
		_ = ptmx.Close()
		_ = tty.Close()
		return nil, fmt.Errorf("failed to size pty: %w", err)
	}

	t := &Terminal{
		TTY:  tty,
		ptmx: ptmx,
		rows: rows,
		cols: cols,
	}
	go t.capture()
	return t, nil
}

func (t *Terminal) capture() {
	buf := make([]byte, 4096)
	for {
		n, err := t.ptmx.Read(buf)
		if n > 0 {
			t.mu.Lock()
			t.output.Write(buf[:n])
			t.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendKeys types keys on the terminal.
func (t *Terminal) SendKeys(keys string) error {
	_, err := t.ptmx.Write([]byte(keys))
	return err
}

// Output returns everything drawn so far, escape sequences included.
func (t *Terminal) Output() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.output.String()
}

// Screen replays the output onto a virtual screen of the terminal's size.
func (t *Terminal) Screen() *Screen {
	return ParseOutput(t.Output(), t.rows, t.cols)
}

// WaitForText polls the screen until text is visible.
func (t *Terminal) WaitForText(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if t.Screen().Contains(text) {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return fmt.Errorf("timeout waiting for %q, screen:\n%s", text, t.Screen().Render())
}

// Close closes both ends of the terminal. Reads still blocked on either end
// finish once the last reference is released.
func (t *Terminal) Close() error {
	err := t.TTY.Close()
	if cerr := t.ptmx.Close(); err == nil {
		err = cerr
	}
	return err
}
