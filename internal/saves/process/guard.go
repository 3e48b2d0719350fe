package process

import (
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/example/isaac-save-manager/internal/saves/domain"
)

// GameExecutable is the process name of every supported version of the game.
const GameExecutable = "isaac-ng.exe"

// Guard refuses to proceed while the game is running, since the game rewrites its save
// files on exit and would undo any change made underneath it.
type Guard struct {
	list func() ([]ps.Process, error)
	name string
}

// New returns a Guard that inspects the live process table.
func New() *Guard {
	return &Guard{list: ps.Processes, name: GameExecutable}
}

// Check returns a GAME_RUNNING error when the game process is found.
func (g *Guard) Check() error {
	processes, err := g.list()
	if err != nil {
		return domain.Wrap(err, domain.CodeExternalLookupFailure, "failed to list running processes")
	}
	for _, p := range processes {
		if p == nil {
			continue
		}
		if strings.EqualFold(p.Executable(), g.name) {
			return domain.Newf(domain.CodeGameRunning,
				"%s is running (pid %d); close the game before changing its save files", g.name, p.Pid()).
				WithDetail("pid", p.Pid()).
				WithDetail("process", g.name)
		}
	}
	return nil
}
