// Package tokenfile reads and writes the marker line that starts every file
// this program produces.
package tokenfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var ErrMismatch = errors.New("the file is not readable by this program")

// ReadHeader consumes the first line of r and checks it against token.
// The reader is left positioned at the start of the second line.
func ReadHeader(r *bufio.Reader, token string) error {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	line = strings.TrimPrefix(line, "\ufeff")
	line = strings.TrimRight(line, "\r\n")
	if line != token {
		return ErrMismatch
	}
	return nil
}

func WriteHeader(w io.Writer, token string) error {
	_, err := io.WriteString(w, token+"\n")
	return err
}
