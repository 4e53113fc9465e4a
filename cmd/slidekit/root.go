package main

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tsawler/slidekit"
	"github.com/tsawler/slidekit/index"
	"github.com/tsawler/slidekit/internal/config"
	"github.com/tsawler/slidekit/internal/logging"
)

// app holds state shared by all commands.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        config.Config
	log        *logrus.Logger

	// transport overrides the search client's HTTP transport.
	transport http.RoundTripper
}

func newApp() *app {
	return &app{v: config.New()}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "slidekit",
		Short: "Edit PowerPoint decks and index their text",
		Long: `slidekit works on .pptx files.

Examples:
  slidekit populate template.pptx report.txt --title "Findings" -o out.pptx
  slidekit copy source.pptx target.pptx --slides 0,2
  slidekit normalize legacy.pptx -o clean.pptx
  slidekit index ./decks --user alice
  slidekit search "quarterly revenue"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initialize(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (YAML)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatText, "log format (text or json)")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		a.populateCommand(),
		a.copyCommand(),
		a.normalizeCommand(),
		a.indexCommand(),
		a.searchCommand(),
		a.listCommand(),
	)
	return root
}

func (a *app) initialize(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	log, err := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func (a *app) editorOptions() []slidekit.Option {
	return []slidekit.Option{
		slidekit.WithTemplateSlide(a.cfg.Editor.TemplateSlide),
		slidekit.WithMaxContentChars(a.cfg.Editor.MaxContentChars),
		slidekit.WithTransformPropagation(a.cfg.Editor.PropagateTransform),
		slidekit.WithLogger(a.log),
	}
}

func (a *app) searchClient(opts ...index.ClientOption) (*index.Client, error) {
	e := a.cfg.Elastic
	opts = append([]index.ClientOption{index.WithLogger(a.log)}, opts...)
	return index.NewClient(index.Config{
		Addresses:      e.Addresses,
		CloudID:        e.CloudID,
		Username:       e.Username,
		Password:       e.Password,
		Index:          e.Index,
		BatchSize:      e.BatchSize,
		MaxRetries:     e.MaxRetries,
		RequestTimeout: e.RequestTimeout,
		Transport:      a.transport,
	}, opts...)
}
