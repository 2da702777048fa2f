// Package process ends the browser together with the helper processes it
// forks, which the launcher's own kill leaves running.
package process

import (
	"errors"
	"fmt"
)

var ErrInvalidPID = errors.New("invalid pid")

// KillTree force-kills pid and everything it started. On unix the
// process must lead its own process group, as rod's launcher arranges.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	return killTree(pid)
}
