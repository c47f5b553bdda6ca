// Package process answers liveness questions about the interpreter
// processes kgctl launches.
package process

import (
	psutil "github.com/shirou/gopsutil/v3/process"
)

// Alive reports whether pid belongs to a live process. Launch records
// outlive the application, so a stale PID is the normal case, not an
// error.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	ok, err := psutil.PidExists(int32(pid))

	return err == nil && ok
}
