package platform

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// WineCommand is the wine binary used to run the Windows client on
// Linux and macOS
const WineCommand = "wine"

// ErrWineNotFound is returned when the client should run under wine but
// wine is not installed or not on PATH
var ErrWineNotFound = errors.New("wine is not installed or not in PATH")

// LaunchClient starts the game client executable. On Windows the client
// runs directly; on Linux and macOS it runs under wine. The client process
// is detached: the launcher does not wait for it to exit.
func LaunchClient(clientExe string) error {
	if runtime.GOOS == OSWindows {
		cmd := exec.Command(clientExe)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to start client %s: %w", clientExe, err)
		}
		return nil
	}

	if _, err := exec.LookPath(WineCommand); err != nil {
		return ErrWineNotFound
	}

	cmd := exec.Command(WineCommand, clientExe)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start client %s under wine: %w", clientExe, err)
	}

	return nil
}
