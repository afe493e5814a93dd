package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-ledger/app"
	"bank-ledger/config"
	"bank-ledger/domain"
	"bank-ledger/logging"
	"bank-ledger/store"
)

// cli holds everything a command invocation needs. The root command fills
// it in PersistentPreRunE; the REPL reuses it for every line it executes.
type cli struct {
	v          *viper.Viper
	configFile string

	cfg     *config.Config
	logger  *slog.Logger
	service *app.LedgerService
	stop    func() error

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs the CLI against the process arguments and exits non-zero on
// failure. This is called by main.main().
func Execute() {
	os.Exit(Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Run executes one CLI invocation and returns its exit code.
func Run(args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{v: viper.New(), in: in, out: out, errOut: errOut}
	root := c.newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if stopErr := c.shutdown(); stopErr != nil && err == nil {
		err = stopErr
	}
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ledger",
		Short: "A CLI for managing bank accounts in a single-process ledger",
		Long: `ledger manages basic and savings accounts protected by a PIN.

It creates accounts, performs deposits, withdrawals, transfers and interest
accrual, and shows balances and transaction history. The ledger is loaded
from the configured snapshot store before each command and saved after any
command that changes it.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.persist,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Config file (yaml, json or toml)")
	flags.String("store", "", "Snapshot store: memory, file or postgres")
	flags.String("snapshot", "", "Snapshot file path for the file store")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.String("log-format", "", "Log format: text or json")
	flags.String("currency", "", "Currency symbol used when printing amounts")

	for key, name := range map[string]string{
		config.KeyStore:          "store",
		config.KeySnapshotPath:   "snapshot",
		config.KeyLogLevel:       "log-level",
		config.KeyLogFormat:      "log-format",
		config.KeyCurrencySymbol: "currency",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(name))
	}

	c.addLedgerCommands(root)
	root.AddCommand(c.newReplCmd())
	return root
}

// addLedgerCommands attaches the account, transaction and query groups.
func (c *cli) addLedgerCommands(parent *cobra.Command) {
	parent.AddCommand(c.newAccountCmd(), c.newTransactionCmd(), c.newQueryCmd())
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	logger, err := logging.New(c.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger

	ss, err := c.openStore(cmd.Context())
	if err != nil {
		return err
	}
	c.service = app.NewLedgerService(ss, logger)

	err = c.service.LoadSnapshot(cmd.Context())
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSnapshotNotFound):
		fmt.Fprintln(c.errOut, "No saved accounts found, starting with an empty ledger.")
	default:
		return fmt.Errorf("error loading accounts: %w", err)
	}
	return nil
}

func (c *cli) openStore(ctx context.Context) (store.SnapshotStore, error) {
	c.stop = func() error { return nil }

	switch c.cfg.Store {
	case config.StoreMemory:
		return store.NewInMemorySnapshotStore(), nil
	case config.StoreFile:
		return store.NewFileSnapshotStore(c.cfg.SnapshotPath), nil
	case config.StorePostgres:
		pgCfg, err := config.LoadPostgres(c.cfg.EnvFile)
		if err != nil {
			return nil, err
		}
		pg := store.NewPostgresSnapshotStore(pgCfg)
		if err := pg.Start(ctx); err != nil {
			return nil, err
		}
		c.stop = pg.Stop
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store %q", c.cfg.Store)
}

// persist saves the ledger when the command changed it.
func (c *cli) persist(cmd *cobra.Command, _ []string) error {
	if c.service == nil || !c.service.Dirty() {
		return nil
	}
	if err := c.service.SaveSnapshot(cmd.Context()); err != nil {
		return fmt.Errorf("error saving accounts: %w", err)
	}
	return nil
}

func (c *cli) shutdown() error {
	if c.stop == nil {
		return nil
	}
	return c.stop()
}
