package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/example/isaac-save-manager/internal/cli"
	"github.com/example/isaac-save-manager/internal/logging"
	"github.com/example/isaac-save-manager/internal/saves"
	"github.com/example/isaac-save-manager/internal/saves/payload"
	"github.com/example/isaac-save-manager/internal/saves/process"
	"github.com/example/isaac-save-manager/internal/saves/sysdirs"
)

var (
	fsProvider afero.Fs = afero.NewOsFs()
	exitFunc            = os.Exit
)

func main() {
	exitFunc(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	logger := logging.New(stderr, 0, cli.ColorEnabled(stderr))

	dirs := sysdirs.NewSystem(fsProvider, &logger)
	mgr := saves.NewManager(fsProvider, dirs, payload.Embedded(), defaultBackupDir(), &logger)
	mgr.SetProcessGuard(process.New())

	prompter := cli.NewPromptUIWithIO(stdin, stdout)
	return cli.Execute(mgr, prompter, stdout, stderr, args, cli.IsTerminal(stdin))
}

// defaultBackupDir is the directory holding the executable, so backups end up next to
// the tool the user launched.
func defaultBackupDir() string {
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
