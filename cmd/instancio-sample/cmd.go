package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/instancio/instancio-sub017"
	"github.com/instancio/instancio-sub017/internal/testmodel"
	"github.com/instancio/instancio-sub017/selector"
)

const (
	FlagSeed     = "seed"
	FlagCount    = "count"
	FlagFormat   = "format"
	FlagSettings = "settings"
	FlagTree     = "tree"
	FlagLenient  = "lenient"
	FlagLogLevel = "loglevel"

	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatSpew = "spew"
)

// models maps a CLI name to the options producing it.
var models = map[string]func(opts ...instancio.Option) *instancio.Model[any]{
	"order":    warehouse[testmodel.Order],
	"customer": warehouse[testmodel.Customer],
	"product":  warehouse[testmodel.Product],
	"category": warehouse[testmodel.Category],
	"drawing": func(opts ...instancio.Option) *instancio.Model[any] {
		return instancio.OfType(reflect.TypeFor[testmodel.Drawing](), append([]instancio.Option{
			instancio.Subtype(selector.Field("Main"), reflect.TypeFor[testmodel.Circle]()),
			instancio.WithImplementations(reflect.TypeFor[testmodel.Rect]()),
		}, opts...)...)
	},
}

func warehouse[T any](opts ...instancio.Option) *instancio.Model[any] {
	return instancio.OfType(reflect.TypeFor[T](), append([]instancio.Option{
		instancio.WithEnum(testmodel.Statuses...),
		instancio.WithConstructors(testmodel.NewMoney),
	}, opts...)...)
}

func modelNames() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// New returns the root command.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instancio-sample <model>",
		Short: "Print generated fixtures of the sample warehouse model",
		Long: `Generates random but reproducible values of the sample model types.

Models: ` + strings.Join(modelNames(), ", "),
		Args:              cobra.ExactArgs(1),
		ValidArgs:         modelNames(),
		RunE:              run,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.Flags().Int64(FlagSeed, 0, "seed for reproducible output (0 picks one from the clock)")
	cmd.Flags().Int(FlagCount, 1, "number of values to generate")
	format := formatValue(FormatYAML)
	cmd.Flags().Var(&format, FlagFormat, "output format: yaml, json or spew")
	cmd.Flags().String(FlagSettings, "", "YAML settings file, e.g. collection.max.size: 3")
	cmd.Flags().Bool(FlagTree, false, "print the node tree of the model instead of values")
	cmd.Flags().Bool(FlagLenient, false, "log unresolved types and unused selectors instead of failing")
	cmd.Flags().String(FlagLogLevel, "warn", "log level: debug, info, warn or error")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	newModel, ok := models[args[0]]
	if !ok {
		return fmt.Errorf("unknown model %q, expected one of %s", args[0], strings.Join(modelNames(), ", "))
	}

	opts, err := options(cmd)
	if err != nil {
		return err
	}

	model := newModel(opts...)
	out := cmd.OutOrStdout()

	if tree, _ := cmd.Flags().GetBool(FlagTree); tree {
		return model.Dump(out)
	}

	count, _ := cmd.Flags().GetInt(FlagCount)

	values, err := model.CreateMany(cmd.Context(), count)
	if err != nil {
		return err
	}

	return render(out, cmd.Flags().Lookup(FlagFormat).Value.String(), values)
}

func options(cmd *cobra.Command) ([]instancio.Option, error) {
	var opts []instancio.Option

	if seed, _ := cmd.Flags().GetInt64(FlagSeed); seed != 0 {
		opts = append(opts, instancio.WithSeed(seed))
	}

	if path, _ := cmd.Flags().GetString(FlagSettings); path != "" {
		opts = append(opts, instancio.WithSettingsFile(path))
	}

	if lenient, _ := cmd.Flags().GetBool(FlagLenient); lenient {
		opts = append(opts, instancio.Lenient())
	}

	level, _ := cmd.Flags().GetString(FlagLogLevel)

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl}))

	return append(opts, instancio.WithLogger(logger)), nil
}

// formatValue is a pflag.Value restricted to the supported output formats.
type formatValue string

var _ pflag.Value = (*formatValue)(nil)

func (f *formatValue) String() string { return string(*f) }

func (f *formatValue) Set(s string) error {
	switch s {
	case FormatYAML, FormatJSON, FormatSpew:
		*f = formatValue(s)
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected yaml, json or spew", s)
	}
}

func (f *formatValue) Type() string { return "format" }

func render(w io.Writer, format string, values []any) error {
	var v any = values
	if len(values) == 1 {
		v = values[0]
	}

	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to render yaml: %w", err)
		}
		_, err = w.Write(data)
		return err

	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to render json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err

	case FormatSpew:
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Fdump(w, v)
		return nil

	default:
		return fmt.Errorf("unknown format %q, expected yaml, json or spew", format)
	}
}
