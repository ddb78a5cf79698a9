package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/jrife/txnkv/commands"
	"github.com/jrife/txnkv/metrics"
	"github.com/jrife/txnkv/storage"
	"github.com/jrife/txnkv/utils/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	capacity     int
	maxDepth     int
	logLevel     string
	stats        bool
	synchronized bool
}

func newRootCommand() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "txnkv",
		Short: "An interactive transactional key-value store",
		Long: `An interactive in-memory key-value store with nested transactions.
Commands are read from standard input one per line. Type HELP to list them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.capacity, "capacity", storage.DefaultTransactionLogCapacity, "Maximum number of undo actions held across all open transactions")
	flags.IntVar(&opts.maxDepth, "max-depth", storage.DefaultMaxTransactionDepth, "Maximum number of nested transactions")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.BoolVar(&opts.stats, "stats", false, "Print operation statistics on exit")
	flags.BoolVar(&opts.synchronized, "synchronized", false, "Run the shell through a session of the thread-safe store")

	return cmd
}

func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	atom := zap.NewAtomicLevel()

	if err := atom.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %s", level, err)
	}

	return zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(zapcore.AddSync(w)),
		atom,
	)), nil
}

func run(cmd *cobra.Command, opts options) error {
	logger, err := newLogger(opts.logLevel, cmd.ErrOrStderr())

	if err != nil {
		return err
	}

	defer logger.Sync()

	config := storage.DefaultConfig()
	config.TransactionLogCapacity = opts.capacity
	config.MaxTransactionDepth = opts.maxDepth
	config.Logger = logger

	store, err := storage.New(config)

	if err != nil {
		return fmt.Errorf("could not create store: %w", err)
	}

	if opts.synchronized {
		store = storage.Synchronized(store).Session()
	}

	registry := prometheus.NewRegistry()

	if opts.stats {
		store = metrics.Instrument(store, metrics.NewCollector(registry))
	}

	logger.Debug("starting shell",
		zap.Int("capacity", opts.capacity),
		zap.Int("max-depth", opts.maxDepth),
		zap.Bool("synchronized", opts.synchronized),
	)

	ctx := log.WithLogger(cmd.Context(), logger)
	shell := &commands.Shell{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}

	if err := shell.Run(ctx, store); err != nil {
		return err
	}

	if opts.stats {
		return printStats(cmd.OutOrStdout(), registry)
	}

	return nil
}

func printStats(w io.Writer, g prometheus.Gatherer) error {
	summary, err := metrics.Summary(g)

	if err != nil {
		return fmt.Errorf("could not gather statistics: %w", err)
	}

	names := make([]string, 0, len(summary))

	for name := range summary {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s %g\n", name, summary[name]); err != nil {
			return err
		}
	}

	return nil
}
