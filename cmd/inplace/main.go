package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/studiowebux/inplace/internal/cli"
	"github.com/studiowebux/inplace/internal/config"
	"github.com/studiowebux/inplace/internal/history"
	"github.com/studiowebux/inplace/internal/keybinds"
	versioncheck "github.com/studiowebux/inplace/internal/version"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "inplace",
	Short: "Edit-in-place fields of HTML documents",
	Long: `inplace finds the best_in_place fields of an HTML document and lets you edit
them from the terminal. Each commit is sent to the field's update URL exactly
like the browser widget would, and the page is rewritten with the reply.

Examples:
  inplace edit page.html --url https://app.test/users/1   # Interactive editor
  inplace edit page.html --mock -w                        # Against the built-in mock endpoint
  inplace fields page.html --kind select -o json          # List fields
  inplace set page.html user[name] Lucy --mock -w         # Commit one value
  inplace serve mock.yaml                                 # Scriptable update endpoint
  inplace history --failed                                # Journal of updates`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <file>",
	Short: "Edit the fields of a document in the terminal UI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args[0], true)
		if err != nil {
			return err
		}
		defer env.close()

		keysPath := filepath.Join(config.ConfigDir, keybinds.FileName)
		keys, err := keybinds.LoadOrDefault(keysPath)
		if err != nil {
			return fmt.Errorf("failed to load key bindings: %w", err)
		}

		opts := cli.EditOptions{
			DocumentOptions: env.doc,
			OutPath:         outPath(args[0]),
			Keys:            keys,
			Mock:            flagMock || flagMockConfig != "",
			MockOpts:        cli.ServeOptions{ConfigPath: flagMockConfig, Port: flagMockPort, Logger: env.logger},
		}
		if env.mgr != nil {
			opts.History = env.mgr
		}
		return cli.Edit(cmd.Context(), opts)
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields <file>",
	Short: "List the editable fields of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args[0], false)
		if err != nil {
			return err
		}
		defer env.close()

		return cli.Fields(cmd.Context(), cmd.OutOrStdout(), cli.FieldsOptions{
			DocumentOptions: env.doc,
			Kinds:           flagKinds,
			Field:           flagField,
			Filter:          flagFilter,
			Query:           flagQuery,
			Output:          flagOutput,
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <file> [field] [value]",
	Short: "Commit one field value without the terminal UI",
	Long: `Commit one field value through its widget and print the displayed result.

The field is object[attribute] or the element id. Without a field or value
you are prompted for them. Checkboxes toggle and take no value.`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args[0], true)
		if err != nil {
			return err
		}
		defer env.close()

		if flagMock || flagMockConfig != "" {
			srv, err := cli.StartMock(cli.ServeOptions{ConfigPath: flagMockConfig, Port: flagMockPort, Logger: env.logger})
			if err != nil {
				return err
			}
			defer srv.Stop()
			if env.doc.Location == "" {
				env.doc.Location = srv.Address() + "/"
			}
		}

		opts := cli.SetOptions{
			DocumentOptions: env.doc,
			OutPath:         outPath(args[0]),
			Wait:            flagWait,
		}
		if len(args) > 1 {
			opts.Field = args[1]
		}
		if len(args) > 2 {
			opts.Value = args[2]
			opts.HasVal = true
		}
		return cli.Set(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print a document with syntax highlighting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(args[0], false)
		if err != nil {
			return err
		}
		defer env.close()

		formatter := "terminal256"
		if flagNoColor {
			formatter = "noop"
		}
		return cli.Show(cmd.Context(), cmd.OutOrStdout(), cli.ShowOptions{
			DocumentOptions: env.doc,
			FieldsOnly:      flagFieldsOnly,
			Style:           flagStyle,
			Formatter:       formatter,
		})
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve [config]",
	Short: "Run a scriptable update endpoint",
	Long: `Run a mock update endpoint. Without a config file every PATCH and PUT is
accepted with an empty body. Routes with 'echo: true' reply with the submitted
value as display_as.

Accepted updates are broadcast on the WebSocket feed path (see 'inplace watch').`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, closeLog, err := newLogger(true)
		if err != nil {
			return err
		}
		defer closeLog()

		opts := cli.ServeOptions{Host: flagHost, Port: flagPort, Logger: logger}
		if len(args) > 0 {
			opts.ConfigPath = args[0]
		}
		return cli.Serve(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <feed-url>",
	Short: "Print updates broadcast by a mock endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Watch(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the journal of updates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer mgr.Close()

		if flagStats {
			return cli.HistoryStats(cmd.OutOrStdout(), mgr, flagDocument, flagOutput)
		}

		if flagClear {
			if err := mgr.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Journal cleared")
			return nil
		}

		return cli.History(cmd.OutOrStdout(), mgr, cli.HistoryOptions{
			Filter: history.Filter{
				Document: flagDocument,
				Field:    flagField,
				Failed:   flagFailed,
				Limit:    flagLimit,
			},
			Query:  flagQuery,
			Output: flagOutput,
			Export: flagExport,
		})
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Validate or export the key binding file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := flagKeysFile
		if path == "" {
			path = filepath.Join(config.ConfigDir, keybinds.FileName)
		}
		return cli.Keybinds(cmd.OutOrStdout(), cli.KeybindsOptions{Path: path, Export: flagExportKeys})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and check for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "inplace %s\n", version)
		if !flagCheck {
			return nil
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()
		release, newer, err := versioncheck.NewChecker().Check(ctx, version)
		if err != nil {
			return err
		}
		if newer {
			fmt.Fprintf(out, "Version %s is available: %s\n", release.Version(), release.HTMLURL)
		} else {
			fmt.Fprintln(out, "You are up to date")
		}
		return nil
	},
}

// Persistent flags
var (
	flagURL       string
	flagConfig    string
	flagVerbose   bool
	flagNoJournal bool
)

// Document flags
var (
	flagOut        string
	flagWrite      bool
	flagMock       bool
	flagMockConfig string
	flagMockPort   int
	flagWait       time.Duration
)

// Listing flags
var (
	flagKinds      []string
	flagField      string
	flagFilter     string
	flagQuery      string
	flagOutput     string
	flagFieldsOnly bool
	flagStyle      string
	flagNoColor    bool
)

// Endpoint flags
var (
	flagHost string
	flagPort int
)

// Journal flags
var (
	flagDocument string
	flagFailed   bool
	flagLimit    int
	flagExport   string
	flagClear    bool
	flagStats    bool
)

var flagCheck bool

// Keybinds flags
var (
	flagKeysFile   string
	flagExportKeys bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagURL, "url", "u", "", "Document URL relative update URLs resolve against")
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Widget defaults file (default: .inplace.yaml or ~/.inplace/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoJournal, "no-journal", false, "Do not record updates in the journal")

	for _, cmd := range []*cobra.Command{editCmd, setCmd} {
		cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Write the updated document to this file")
		cmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "Write the updated document back to its file")
		cmd.Flags().BoolVar(&flagMock, "mock", false, "Send updates to the built-in mock endpoint")
		cmd.Flags().StringVar(&flagMockConfig, "mock-config", "", "Mock endpoint config file (implies --mock)")
		cmd.Flags().IntVar(&flagMockPort, "mock-port", 0, "Mock endpoint port (0 picks a free port)")
	}
	setCmd.Flags().DurationVar(&flagWait, "wait", 30*time.Second, "How long to wait for the server reply")

	fieldsCmd.Flags().StringSliceVarP(&flagKinds, "kind", "k", nil, "Only fields of these kinds (input, textarea, select, checkbox)")
	fieldsCmd.Flags().StringVarP(&flagField, "field", "f", "", "Only fields matching this glob, e.g. 'user[*]'")
	fieldsCmd.Flags().StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the JSON field list")
	fieldsCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command) applied after the filter")
	fieldsCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")

	showCmd.Flags().BoolVar(&flagFieldsOnly, "fields", false, "Only print the markup of each field")
	showCmd.Flags().StringVar(&flagStyle, "style", "monokai", "Highlighting style")
	showCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable highlighting")

	serveCmd.Flags().StringVar(&flagHost, "host", "", "Listen host (overrides the config)")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", -1, "Listen port (overrides the config, 0 picks a free port)")

	historyCmd.Flags().StringVarP(&flagDocument, "document", "d", "", "Only updates made from this document")
	historyCmd.Flags().StringVarP(&flagField, "field", "f", "", "Only updates of this field")
	historyCmd.Flags().BoolVar(&flagFailed, "failed", false, "Only failed updates")
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 50, "Maximum number of entries")
	historyCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query or $(shell command) applied to the JSON entries")
	historyCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	historyCmd.Flags().StringVar(&flagExport, "export", "", "Write the entries to this JSON file")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every entry")
	historyCmd.Flags().BoolVar(&flagStats, "stats", false, "Per-field statistics instead of entries")

	keybindsCmd.Flags().StringVar(&flagKeysFile, "file", "", "Key binding file (default: ~/.inplace/keybinds.json)")
	keybindsCmd.Flags().BoolVar(&flagExportKeys, "export", false, "Write the default bindings to the file")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Look up the latest release")

	rootCmd.AddCommand(editCmd, fieldsCmd, setCmd, showCmd, serveCmd, watchCmd, historyCmd, keybindsCmd, versionCmd)
}

// environment holds what document commands share
type environment struct {
	doc     cli.DocumentOptions
	logger  *zap.Logger
	mgr     *history.Manager
	closers []func()
}

func (e *environment) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// setup loads the widget defaults and opens the logger and, when record is
// set, the update journal
func setup(path string, record bool) (*environment, error) {
	defaultsPath := flagConfig
	if defaultsPath == "" {
		defaultsPath = config.GetDefaultsFilePath()
	}
	defaults, err := config.LoadDefaults(defaultsPath)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(false)
	if err != nil {
		return nil, err
	}
	env := &environment{
		doc: cli.DocumentOptions{
			Path:     path,
			Location: flagURL,
			Defaults: defaults,
			Logger:   logger,
		},
		logger:  logger,
		closers: []func(){closeLog},
	}

	if record && !flagNoJournal {
		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			env.close()
			return nil, err
		}
		env.closers = append(env.closers, func() { mgr.Close() })
		env.mgr = mgr
		env.doc.Journal = mgr.For(path)
	}
	return env, nil
}

// outPath is where a document command writes its result
func outPath(path string) string {
	if flagOut != "" {
		return flagOut
	}
	if flagWrite {
		return path
	}
	return ""
}

// newLogger writes JSON logs to the log file. The terminal UI owns the
// screen, so stderr is only used when toStderr is set.
func newLogger(toStderr bool) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{config.LogFile}
	if toStderr {
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}
	cfg.ErrorOutputPaths = []string{config.LogFile}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger = logger.With(zap.String("version", version))
	return logger, func() { _ = logger.Sync() }, nil
}
