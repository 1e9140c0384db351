package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vladimir-polyakov/esencia/internal/config"
	"github.com/vladimir-polyakov/esencia/internal/logging"
	"github.com/vladimir-polyakov/esencia/internal/manifest"
	"github.com/vladimir-polyakov/esencia/internal/metrics"
	"github.com/vladimir-polyakov/esencia/internal/render"
	"github.com/vladimir-polyakov/esencia/internal/tracing"
)

// cli carries flag values and the viper instance shared by every command.
type cli struct {
	v          *viper.Viper
	projectDir string
	cfgFile    string
	noColor    bool
}

// session is what a command needs once configuration is loaded.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	catalog *manifest.Catalog
}

func (s *session) Close() {
	_ = s.logger.Close()
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{v: viper.New()}

	root := &cobra.Command{
		Use:   "esencia",
		Short: "Resolve component hierarchies into minimal trees",
		Long: `esencia loads component definitions from YAML manifests and resolves
requested components into the smallest forest that contains them and all of
their ancestors.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.projectDir, "project", "p", "", "project directory (default: current directory)")
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (default: <project>/.esencia/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	_ = c.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newInitCmd(c),
		newResolveCmd(c),
		newListCmd(c),
		newValidateCmd(c),
		newBrowseCmd(c),
		newServeCmd(c),
	)
	return root
}

func (c *cli) dir() (string, error) {
	if c.projectDir != "" {
		return c.projectDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return cwd, nil
}

func (c *cli) styles() render.Styles {
	if c.noColor {
		return render.PlainStyles()
	}
	// Query the background before any program starts so the terminal reply
	// does not race with bubbletea's input reader.
	_ = lipgloss.HasDarkBackground()
	return render.DefaultStyles()
}

// open loads config, opens the project log and loads the manifest catalog.
func (c *cli) open() (*session, error) {
	dir, err := c.dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir, c.cfgFile, c.v)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.ProjectDir)
	if err != nil {
		return nil, err
	}
	level, err := logging.ParseLevel(cfg.Project.Log.Level)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}
	logger.SetMinLevel(level)
	logger.Debug(logging.CatConfig, "config loaded", "file", cfg.ConfigFile, "project", cfg.ProjectDir)

	m := metrics.New()
	catalog := manifest.NewCatalog(cfg.ManifestPaths(), manifest.WithLogger(logger), manifest.WithMetrics(m))
	if _, err := catalog.Reload(); err != nil {
		_ = logger.Close()
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, metrics: m, catalog: catalog}, nil
}

func tracingConfig(cfg *config.Config) tracing.Config {
	raw := cfg.Project.Tracing
	return tracing.Config{
		Enabled:      raw.Enabled,
		Exporter:     raw.Exporter,
		FilePath:     cfg.TraceFile(),
		OTLPEndpoint: raw.OTLPEndpoint,
		SampleRate:   raw.SampleRate,
		ServiceName:  "esencia",
	}
}
