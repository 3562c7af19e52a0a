// noted is a desktop productivity daemon: it watches the focused
// application window, extracts inline notes from watched files, and
// serves both through a terminal UI.
package main

import (
	"os"

	"github.com/noted-app/noted/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
