package cmd

import (
	"github.com/sirupsen/logrus"

	gcpu "github.com/shirou/gopsutil/v4/cpu"
	gmem "github.com/shirou/gopsutil/v4/mem"

	"github.com/xsbench/xsbench-go/sim"
)

// checkHost warns when the run asks for more memory than the host has
// available or more workers than it has logical CPUs. Query failures are
// not fatal.
func checkHost(memBytes uint64, threads int) {
	if vm, err := gmem.VirtualMemory(); err != nil {
		logrus.Debugf("memory query failed: %v", err)
	} else if memBytes > vm.Available {
		logrus.Warnf("Estimated memory %d MB exceeds %d MB available",
			sim.MegaBytes(memBytes), sim.MegaBytes(vm.Available))
	}

	if n, err := gcpu.Counts(true); err != nil {
		logrus.Debugf("cpu query failed: %v", err)
	} else if threads > n {
		logrus.Warnf("%d threads requested on %d logical CPUs", threads, n)
	}
}
