// Command boardctl shows the task board in a terminal and moves tasks
// between columns.
package main

import (
	"fmt"
	"os"

	"github.com/hiroki-koketsu/kanban-board/internal/config"
)

func main() {
	cfg := config.Load()
	if err := newRootCmd(newCLI(cfg)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
