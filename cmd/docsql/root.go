package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/example/docsql/internal/api"
	"github.com/example/docsql/internal/config"
	"github.com/example/docsql/internal/docmodel"
	"github.com/example/docsql/internal/logging"
	"github.com/example/docsql/internal/output"
)

// app is the state shared by all subcommands once flags and configuration
// have been resolved.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	model     *docmodel.Model
	engine    *api.Engine
	formatter output.Formatter
}

var flagBindings = map[string]string{
	"data":      "data.file",
	"watch":     "data.watch",
	"format":    "output.format",
	"log-level": "log.level",
	"log-json":  "log.json",
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string

	root := &cobra.Command{
		Use:   "docsql",
		Short: "Run SELECT statements against a document of objects",
		Long: `docsql runs a small SQL dialect over the objects of a YAML or JSON document.

Examples:
  docsql --data rooms.yaml query "Select name From document Where role = 'space'"
  docsql --data rooms.yaml query "Select role, count(*) From document Group By role"
  docsql --data rooms.yaml explain "Select Sum(num) From document"
  docsql --data rooms.yaml shell`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.New(configPath)
			if err != nil {
				return err
			}
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			return a.setup(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: docsql.{toml,yaml,json} in the working directory)")
	flags.String("data", "", "document file to query (YAML or JSON)")
	flags.Bool("watch", false, "reload the document when the file changes (shell only)")
	flags.String("format", config.FormatTable, "output format: table, csv or json")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Bool("log-json", false, "log as JSON")

	root.AddCommand(
		newQueryCmd(a),
		newExplainCmd(a),
		newDescribeCmd(a),
		newShellCmd(a),
	)
	return root
}

// bindFlags lets explicitly set flags override file and environment values.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for flag, key := range flagBindings {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind --%s", flag)
		}
	}
	return nil
}

func (a *app) setup(v *viper.Viper) error {
	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return err
	}
	formatter, err := output.New(cfg.Output.Format)
	if err != nil {
		return err
	}
	if cfg.Data.File == "" {
		return errors.WithHint(errors.New("no document to query"), "pass --data or set data.file / DOCSQL_DATA_FILE")
	}
	objects, err := docmodel.LoadFile(cfg.Data.File)
	if err != nil {
		return err
	}
	logger.Debug("document loaded", zap.String("file", cfg.Data.File), zap.Int("count", len(objects)))

	a.cfg = cfg
	a.logger = logger
	a.formatter = formatter
	a.model = docmodel.NewModel(objects...)
	a.engine = api.New(a.model.All, a.model.ByName, api.WithLogger(logger))
	return nil
}
