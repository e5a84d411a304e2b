package observability

import (
	"os"

	"github.com/shirou/gopsutil/process"
)

type ProcessStats struct {
	PID        int32
	Status     string
	RSSBytes   uint64
	CPUPercent float64
}

// SelfProcess returns a handle on the running process for ReadProcessStats.
func SelfProcess() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
}

// ReadProcessStats retrieves memory, CPU and OS status for the given process.
func ReadProcessStats(p *process.Process) (ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, err
	}

	status, err := p.Status()
	if err != nil {
		return ProcessStats{}, err
	}
	return ProcessStats{
		PID:        p.Pid,
		Status:     StatusName(status),
		RSSBytes:   memInfo.RSS,
		CPUPercent: cpuPercent,
	}, nil
}

// StatusName turns the one letter OS status into a readable word.
func StatusName(status string) string {
	switch status {
	case "R":
		return "RUNNING"
	case "S":
		return "SLEEP"
	case "T":
		return "STOP"
	case "I":
		return "IDLE"
	case "Z":
		return "ZOMBIE"
	case "W":
		return "WAIT"
	case "L":
		return "LOCK"
	default:
		return "UNKNOWN"
	}
}
