package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiroki-koketsu/kanban-board/internal/board"
	"github.com/hiroki-koketsu/kanban-board/internal/config"
	"github.com/hiroki-koketsu/kanban-board/internal/render"
	"github.com/hiroki-koketsu/kanban-board/internal/repository"
	"github.com/hiroki-koketsu/kanban-board/internal/store"
	"github.com/hiroki-koketsu/kanban-board/internal/telemetry"
)

// cli is the state shared by all commands of one invocation.
type cli struct {
	storeURL string
	timeout  time.Duration
	memory   bool
	logger   *slog.Logger

	client store.Client
	tasks  *repository.TaskRepository
	board  *board.Service
	term   *render.Terminal
}

func newCLI(cfg *config.Config) *cli {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if cfg.LogFile != "" {
		logger = telemetry.NewStartupLogger(cfg.LogFile)
	}
	return &cli{
		storeURL: cfg.StoreURL,
		timeout:  cfg.StoreTimeout,
		logger:   logger,
	}
}

// connect wires the store, repositories and board service. A client set
// beforehand is kept.
func (c *cli) connect(out io.Writer) {
	if c.client == nil {
		if c.memory {
			c.client = store.NewMemory()
		} else {
			c.client = store.NewHTTPClient(c.storeURL, c.timeout)
		}
	}
	c.term = render.NewTerminal(out)
	c.tasks = repository.NewTaskRepository(c.client)
	c.board = board.NewService(c.tasks, repository.NewContactRepository(c.client),
		board.WithRenderer(c.term),
		board.WithNotifier(c.term),
		board.WithLogger(c.logger),
	)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "boardctl",
		Short: "Show and update the task board",
		Long: `boardctl renders the four board columns and moves tasks through the
workflow: To do, In progress, Await feedback, Done.

Examples:
  boardctl board
  boardctl add "Write release notes" --prio urgent --due "next friday"
  boardctl next 6f1c...
  boardctl drop 6f1c... container-column-done`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.connect(cmd.OutOrStdout())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, c, "")
		},
	}

	root.PersistentFlags().StringVar(&c.storeURL, "store", c.storeURL, "document store base URL")
	root.PersistentFlags().BoolVar(&c.memory, "memory", false, "use an in-process store that is discarded on exit")

	root.AddCommand(
		newBoardCmd(c),
		newSummaryCmd(c),
		newAddCmd(c),
		newEditCmd(c),
		newContactsCmd(c),
		newMoveCmd(c, "next", "Move a task one column right", c.moveNext),
		newMoveCmd(c, "prev", "Move a task one column left", c.movePrev),
		newDropCmd(c),
		newToggleCmd(c),
		newRemoveCmd(c),
	)
	return root
}
