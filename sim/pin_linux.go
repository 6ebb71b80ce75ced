//go:build linux

package sim

import (
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// pinWorker locks the calling goroutine to its OS thread and binds that
// thread to one of the CPUs the process may run on. The goroutine never
// unlocks, so the thread exits with it and the affinity never leaks to
// other goroutines.
func pinWorker(worker int) {
	runtime.LockOSThread()

	var allowed unix.CPUSet
	if err := unix.SchedGetaffinity(0, &allowed); err != nil {
		logrus.Debugf("worker %d: reading cpu affinity: %v", worker, err)
		return
	}
	cpus := make([]int, 0, allowed.Count())
	for cpu := 0; len(cpus) < allowed.Count(); cpu++ {
		if allowed.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	if len(cpus) == 0 {
		return
	}

	var set unix.CPUSet
	set.Set(cpus[worker%len(cpus)])
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		logrus.Debugf("worker %d: cpu affinity not applied: %v", worker, err)
		return
	}
	logrus.Debugf("worker %d pinned to cpu %d", worker, cpus[worker%len(cpus)])
}
