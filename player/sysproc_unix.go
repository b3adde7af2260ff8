//go:build !windows

package player

import (
	"errors"
	"os"
	"syscall"
)

// mpv leads its own process group, so ^C in the terminal stays with the TUI.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcess kills the whole group, taking ytdl helpers down with mpv.
func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	err := syscall.Kill(-p.Pid, syscall.SIGKILL)
	if err == nil || errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return p.Kill()
}
