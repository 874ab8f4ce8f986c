package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/modelproxy/pkg/config"
	"github.com/getmockd/modelproxy/pkg/logging"
	"github.com/getmockd/modelproxy/pkg/model"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	status     string
	engine     string
	logLevel   string
	logFormat  string
	jsonOutput bool
}

// NewRootCommand builds the modelproxy command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "modelproxy",
		Short: "modelproxy calls configured backend interfaces, live or mocked",
		Long: `modelproxy loads an interface configuration (interface.json, interface.yaml)
describing backend interfaces and calls them individually, through pipelines,
or on behalf of browser clients via an HTTP interceptor.

Interfaces whose status is "mock" or "mockerr" are answered from rule files by
a mock engine; every other status selects a live URL.

Settings may also come from MODELPROXY_* environment variables; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&g.configPath, "config", "c", "", "Interface configuration file (default: discover interface.json|yaml|yml)")
	flags.StringVar(&g.status, "status", "", "Override the document status (e.g. mock, mockerr, prod)")
	flags.StringVar(&g.engine, "engine", "", "Override the mock engine (template, schema)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&g.logFormat, "log-format", "", "Log format: text, json")
	flags.BoolVar(&g.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newIDsCommand(g),
		newValidateCommand(g),
		newCallCommand(g),
		newRunCommand(g),
		newServeCommand(g),
		newVersionCommand(g),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the command line with args and the given writers.
func ExecuteArgs(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// settings merges environment settings with the flags that were set.
func (g *globals) settings() (config.Settings, error) {
	s, err := config.LoadSettings()
	if err != nil {
		return config.Settings{}, err
	}
	if g.configPath != "" {
		s.ConfigPath = g.configPath
	}
	if g.status != "" {
		s.Status = g.status
	}
	if g.engine != "" {
		s.Engine = g.engine
	}
	if g.logLevel != "" {
		s.LogLevel = g.logLevel
	}
	if g.logFormat != "" {
		s.LogFormat = g.logFormat
	}
	return s, nil
}

func (g *globals) logger(cmd *cobra.Command, s config.Settings) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(s.LogLevel),
		Format: logging.ParseFormat(s.LogFormat),
		Output: cmd.ErrOrStderr(),
	})
}

// runtime loads the interface configuration and wires a model runtime.
func (g *globals) runtime(cmd *cobra.Command) (*model.Runtime, *slog.Logger, error) {
	s, err := g.settings()
	if err != nil {
		return nil, nil, err
	}
	log := g.logger(cmd, s)

	path, err := config.DiscoverConfig(s.ConfigPath, ".")
	if err != nil {
		return nil, nil, err
	}
	opts, err := model.SettingsOptions(s)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, model.WithLogger(log))

	rt, err := model.Init(path, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	log.Debug("interface configuration loaded", "path", path, "interfaces", rt.Registry.Len(), "status", rt.Registry.Status())
	return rt, log, nil
}
