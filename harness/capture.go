package harness

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

var captureMu sync.Mutex

// Capture runs fn with os.Stdout and os.Stderr redirected into a single
// buffer and returns what was written. When tee is non-nil the output is
// forwarded to it as well. Captures are serialized because the standard
// streams are process-wide.
func Capture(tee io.Writer, fn func()) (string, error) {
	captureMu.Lock()
	defer captureMu.Unlock()

	// keep backup of the real files
	originStdout := os.Stdout
	originStderr := os.Stderr

	reader, writer, err := os.Pipe()
	if err != nil {
		return "", err
	}
	defer reader.Close()

	os.Stdout = writer
	os.Stderr = writer
	restore := func() {
		os.Stdout = originStdout
		os.Stderr = originStderr
	}

	var buf bytes.Buffer
	var dst io.Writer = &buf
	if tee != nil {
		dst = io.MultiWriter(&buf, tee)
	}

	// copy in a separate goroutine so printing can't block indefinitely
	copyErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(dst, reader)
		copyErr <- err
	}()

	runErr := doSafe(func() {
		defer restore()
		fn()
	})

	if err := writer.Close(); err != nil {
		return "", err
	}
	if err := <-copyErr; err != nil {
		return "", err
	}

	return buf.String(), runErr
}

func doSafe(f func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	f()

	return nil
}
