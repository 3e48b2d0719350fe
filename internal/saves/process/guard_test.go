package process

import (
	"errors"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"

	"github.com/example/isaac-save-manager/internal/saves/domain"
)

type fakeProcess struct {
	pid  int
	name string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.name }

func guardWith(processes []ps.Process, err error) *Guard {
	return &Guard{
		list: func() ([]ps.Process, error) { return processes, err },
		name: GameExecutable,
	}
}

func TestCheckPassesWhenGameIsClosed(t *testing.T) {
	g := guardWith([]ps.Process{
		fakeProcess{pid: 10, name: "steam.exe"},
		fakeProcess{pid: 11, name: "explorer.exe"},
	}, nil)
	assert.NoError(t, g.Check())
}

func TestCheckDetectsRunningGame(t *testing.T) {
	g := guardWith([]ps.Process{
		fakeProcess{pid: 10, name: "steam.exe"},
		fakeProcess{pid: 4242, name: "Isaac-NG.EXE"},
	}, nil)

	err := g.Check()
	assert.ErrorIs(t, err, domain.ErrGameRunning)
	assert.Contains(t, err.Error(), "4242")
	assert.Equal(t, 4242, domain.DetailsOf(err)["pid"])
}

func TestCheckListFailure(t *testing.T) {
	g := guardWith(nil, errors.New("access denied"))

	err := g.Check()
	assert.ErrorIs(t, err, domain.ErrExternalLookupFailure)
	assert.Contains(t, err.Error(), "access denied")
}
