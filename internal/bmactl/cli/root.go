// Package cli implements bmactl, a thin command-line client over the
// taskrunner's Admin and Discovery HTTP surfaces.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds bmactl's global configuration, layered from flags, a
// config file, and BMACTL_-prefixed environment variables.
type Config struct {
	JSON          bool
	NoColor       bool
	Verbose       bool
	ConfigFile    string
	AdminAddr     string
	DiscoveryAddr string
}

// GlobalConfig is the shared configuration instance every command reads.
var GlobalConfig = &Config{}

// RootCmd is bmactl's base command.
var RootCmd = &cobra.Command{
	Use:   "bmactl",
	Short: "bmactl - operator CLI for the bookmark pipeline",
	Long: `bmactl drives the bookmark pipeline's task submission, inspection,
and agent discovery surfaces from the command line.`,
	Version: "dev",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if GlobalConfig.NoColor {
			pterm.DisableColor()
		}
		if GlobalConfig.Verbose {
			pterm.EnableDebugMessages()
		}
		return nil
	},
}

// SetVersion sets the version string from build-time injection.
func SetVersion(version string) {
	RootCmd.Version = version
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&GlobalConfig.JSON, "json", false, "Output in JSON format (machine-readable)")
	RootCmd.PersistentFlags().BoolVar(&GlobalConfig.NoColor, "no-color", false, "Disable colored output")
	RootCmd.PersistentFlags().BoolVarP(&GlobalConfig.Verbose, "verbose", "v", false, "Enable verbose/debug output")
	RootCmd.PersistentFlags().StringVar(&GlobalConfig.ConfigFile, "config", "", "Config file path (default: .bmactl.json in cwd)")
	RootCmd.PersistentFlags().StringVar(&GlobalConfig.AdminAddr, "admin-addr", "http://localhost:8091", "Admin HTTP surface base URL")
	RootCmd.PersistentFlags().StringVar(&GlobalConfig.DiscoveryAddr, "discovery-addr", "http://localhost:8090", "Discovery HTTP surface base URL")

	for _, name := range []string{"json", "no-color", "verbose", "admin-addr", "discovery-addr"} {
		if err := viper.BindPFlag(name, RootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func initConfig() error {
	if GlobalConfig.ConfigFile != "" {
		viper.SetConfigFile(GlobalConfig.ConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName(".bmactl")
	}

	viper.SetEnvPrefix("BMACTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else if GlobalConfig.Verbose {
		pterm.Debug.Printf("using config file: %s\n", viper.ConfigFileUsed())
	}

	GlobalConfig.JSON = viper.GetBool("json")
	GlobalConfig.NoColor = viper.GetBool("no-color")
	GlobalConfig.Verbose = viper.GetBool("verbose")
	if viper.IsSet("admin-addr") {
		GlobalConfig.AdminAddr = viper.GetString("admin-addr")
	}
	if viper.IsSet("discovery-addr") {
		GlobalConfig.DiscoveryAddr = viper.GetString("discovery-addr")
	}

	return nil
}

// OutputJSON writes data to stdout as indented JSON.
func OutputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// OutputTable renders rows as a human-readable table, or "no results"
// when rows is empty.
func OutputTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		pterm.Info.Println("no results found")
		return
	}
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)
	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to render table: %v\n", err)
	}
}

// Success prints a success message.
func Success(message string) {
	if !GlobalConfig.NoColor {
		pterm.Success.Println(message)
	} else {
		fmt.Println("OK", message)
	}
}

// Error prints an error message to stderr.
func Error(message string) {
	if !GlobalConfig.NoColor {
		pterm.Error.Println(message)
	} else {
		fmt.Fprintln(os.Stderr, "ERROR", message)
	}
}

// Info prints an informational message.
func Info(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if !GlobalConfig.NoColor {
		pterm.Info.Println(message)
	} else {
		fmt.Println("INFO", message)
	}
}
