package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/apptbook/internal/constants"
)

var listProcesses = ps.Processes

// OtherInstances returns the pids of other running apptbook processes.
// Restoring underneath one of them would leave it writing to a replaced file.
func OtherInstances() ([]int, error) {
	procs, err := listProcesses()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	self := os.Getpid()
	var pids []int
	for _, p := range procs {
		if p == nil || p.Pid() == self {
			continue
		}
		exe := strings.TrimSuffix(filepath.Base(p.Executable()), ".exe")
		if exe == constants.AppName {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}
