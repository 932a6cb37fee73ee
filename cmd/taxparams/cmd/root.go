package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pslmodels/taxparams"
	"github.com/pslmodels/taxparams/pkg/logging"
	"github.com/pslmodels/taxparams/pkg/params"
)

var (
	configFile string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taxparams",
	Short: "Tax policy parameter explorer",
	Long: `Taxparams manages US tax-policy parameters and projects their values
across the budget window using published inflation and wage growth rates.

The current-law defaults are compiled into the binary. Reforms are yaml
documents mapping parameter names to {year, value} lists; "<name>-indexed"
keys switch a parameter's inflation indexing on or off and "CPI_offset"
shifts the indexing rate itself.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.taxparams.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().String("policy", "", "policy defaults yaml (default is the embedded current-law file)")
	rootCmd.PersistentFlags().String("growfactors", "", "grow factor yaml (default is the embedded tables)")

	for _, flag := range []string{"verbose", "quiet", "policy", "growfactors"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".taxparams")
	}

	// .env files load before viper env binding; .env.local overrides .env.
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Overload(envFile); err == nil && verbose {
			fmt.Fprintln(os.Stderr, "Loaded", envFile)
		}
	}

	viper.SetEnvPrefix("TAXPARAMS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	configureLogging()
}

// configureLogging sets the global log level from flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if viper.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	if viper.GetBool("quiet") {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	zerolog.SetGlobalLevel(level)
	logging.SetDefault(logging.Default().Level(level))
}

// newTaxParams builds the parameter set from the configured sources.
func newTaxParams() (*taxparams.TaxParams, error) {
	var opts []taxparams.Option

	if policy := viper.GetString("policy"); policy != "" {
		opts = append(opts, taxparams.WithDefaults(
			params.WithPath(filepath.Dir(policy)),
			params.WithFile(filepath.Base(policy)),
		))
		logging.Debug().Str("file", policy).Msg("Using policy defaults file")
	}

	if gfFile := viper.GetString("growfactors"); gfFile != "" {
		data, err := os.ReadFile(gfFile)
		if err != nil {
			return nil, fmt.Errorf("reading grow factors: %w", err)
		}
		gf, err := taxparams.ReadGrowFactors(data)
		if err != nil {
			return nil, err
		}
		opts = append(opts, taxparams.WithGrowFactors(gf))
		logging.Debug().Str("file", gfFile).Msg("Using grow factor file")
	}

	return taxparams.New(opts...)
}
