// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	for _, errno := range fatalErrnos {
		if !isFatalFsnotifyError(errno) {
			t.Errorf("isFatalFsnotifyError(%v) = false", errno)
		}
		if !isFatalFsnotifyError(fmt.Errorf("fsnotify: %w", errno)) {
			t.Errorf("isFatalFsnotifyError(wrapped %v) = false", errno)
		}
	}
	for _, err := range []error{syscall.Errno(5), errors.New("queue overflow")} {
		if isFatalFsnotifyError(err) {
			t.Errorf("isFatalFsnotifyError(%v) = true", err)
		}
	}
}
