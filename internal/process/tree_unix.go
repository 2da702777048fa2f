//go:build !windows

package process

import "syscall"

func killTree(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
