//go:build !linux

package sim

import "runtime"

// pinWorker only locks the OS thread; CPU affinity is Linux-only.
func pinWorker(worker int) {
	runtime.LockOSThread()
}
