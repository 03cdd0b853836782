// Package tracker implements persistence of training metrics
package tracker

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// Return persists the mean per-episode return of each training epoch
// to an append-only text file, one plain decimal number per line, with
// no header and no epoch index. Each call to Track writes one line
// immediately so that a crashed run loses no recorded epochs.
type Return struct {
	file *os.File
	w    *bufio.Writer
}

// NewReturn creates and returns a new *Return tracker writing to
// filename. Any existing file at filename is truncated.
func NewReturn(filename string) (*Return, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("newreturn: could not open metric file: %v",
			err)
	}

	return &Return{
		file: file,
		w:    bufio.NewWriter(file),
	}, nil
}

// Track records the mean per-episode return of one epoch
func (r *Return) Track(meanReturn float64) error {
	if _, err := r.w.WriteString(
		strconv.FormatFloat(meanReturn, 'f', -1, 64)); err != nil {
		return fmt.Errorf("track: could not write metric: %v", err)
	}
	if err := r.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("track: could not write metric: %v", err)
	}
	if err := r.w.Flush(); err != nil {
		return fmt.Errorf("track: could not flush metric: %v", err)
	}
	return nil
}

// Close flushes any buffered metrics and closes the underlying file.
// Close must be called on every exit path.
func (r *Return) Close() error {
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return fmt.Errorf("close: could not flush metrics: %v", err)
	}
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("close: could not close metric file: %v", err)
	}
	return nil
}
