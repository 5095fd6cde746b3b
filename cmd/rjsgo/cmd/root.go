package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rjsgo/rjsgo/internal/engine/gc"
	"github.com/rjsgo/rjsgo/internal/engine/rt"
	"github.com/rjsgo/rjsgo/pkg/config"
	"github.com/rjsgo/rjsgo/pkg/pprof"
	"github.com/rjsgo/rjsgo/pkg/telemetry"
	"github.com/rjsgo/rjsgo/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	cfgPath    string
	pprofFile  string
	otlpAddr   string
	otlpHTTP   bool
	sampleFrac float64

	// Shared state built in PersistentPreRunE, consumed by run/eval.
	logger       utils.Logger
	cfg          *config.Config
	pprofSession *pprof.Session
	provider     *telemetry.Provider
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "rjsgo",
	Short: "A precise-copying-GC ECMAScript host",
	Long: `rjsgo embeds a two-semispace copying-collector ECMAScript runtime.

It runs script files and inline source, with opt-in CPU profiling, GC
history recording and OTLP trace export for the host tooling around the
runtime (the runtime itself never emits telemetry into script
execution).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := utils.LevelInfo
		if verbose {
			level = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(os.Stdout, level)

		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if pprofFile != "" {
			cfg.CLI.PprofFile = pprofFile
			cfg.CLI.PprofEnabled = true
		}
		if otlpAddr != "" {
			cfg.Telemetry.Enabled = true
			cfg.Telemetry.OTLPEndpoint = otlpAddr
		}
		if otlpHTTP {
			cfg.Telemetry.UseHTTP = true
		}
		if sampleFrac > 0 {
			cfg.Telemetry.SampleFraction = sampleFrac
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		if cfg.CLI.PprofEnabled {
			session, err := pprof.Start(cfg.CLI.PprofFile)
			if err != nil {
				return err
			}
			pprofSession = session
			logger.Infof("pprof collection started (file: %s)", cfg.CLI.PprofFile)
		}

		if cfg.Telemetry.Enabled {
			p, err := telemetry.Setup(context.Background(), cfg.Telemetry)
			if err != nil {
				return err
			}
			provider = p
			logger.Infof("telemetry export enabled (endpoint: %s)", cfg.Telemetry.OTLPEndpoint)
		} else {
			provider = telemetry.Noop()
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofSession != nil {
			if err := pprofSession.Stop(); err != nil {
				logger.Warnf("failed to stop pprof session: %v", err)
			} else {
				logger.Infof("pprof profile written to: %s", cfg.CLI.PprofFile)
			}
		}
		if provider != nil {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.Warnf("failed to shut down telemetry provider: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug-level) logging")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&pprofFile, "pprof-file", "", "write a CPU profile of the host process to this path")
	rootCmd.PersistentFlags().StringVar(&otlpAddr, "otlp-endpoint", "", "OTLP collector endpoint for host-tooling traces (enables telemetry)")
	rootCmd.PersistentFlags().BoolVar(&otlpHTTP, "otlp-http", false, "use HTTP instead of gRPC for OTLP export")
	rootCmd.PersistentFlags().Float64Var(&sampleFrac, "otlp-sample", 0, "trace sample fraction override (0,1]")

	binName := BinName()
	rootCmd.Example = `  # Run a script file
  ` + binName + ` run ./script.js

  # Run in strict mode
  ` + binName + ` run --strict ./script.js

  # Evaluate inline source
  ` + binName + ` eval "1 + 1"

  # Profile a run and export traces
  ` + binName + ` run --pprof-file ./cpu.pprof --otlp-endpoint localhost:4317 ./script.js`
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}

// newEnv constructs a heap and JsEnv from the loaded configuration,
// shared by run and eval so both commands see identical GC tuning and
// tracer wiring.
func newEnv() (*rt.JsEnv, error) {
	opts := gc.Opts{
		InitialHeapBytes: cfg.Gc.InitialHeapBytes,
		InitGC:           cfg.Gc.InitGC,
		SlowGrowthFactor: cfg.Gc.SlowGrowthFactor,
		FastGrowthFactor: cfg.Gc.FastGrowthFactor,
	}
	walker := rt.NewWalkerImpl()
	heap, err := gc.New(walker, opts, logger)
	if err != nil {
		return nil, err
	}
	tracer := provider.Tracer("rjsgo/cli")
	return rt.NewEnv(heap, walker, logger, tracer)
}
