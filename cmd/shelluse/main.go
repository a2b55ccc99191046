// shelluse lets agents drive allowlisted tmux sessions like a human would.
package main

import (
	"os"

	"github.com/steveyegge/shelluse/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
