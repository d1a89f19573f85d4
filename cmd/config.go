package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/JingyaoDOU/slurmpy/internal/config"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showPath bool

// configKeysCompletion returns config keys for shell completion
func configKeysCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	if len(args) == 1 {
		return configValueCompletion(args[0]), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// configValueCompletion returns suggested values for a config key
func configValueCompletion(key string) []string {
	switch key {
	case "date_in_name", "bash_strict":
		return []string{"true", "false"}
	case "tries":
		return []string{"1", "2", "3"}
	case "default_time":
		return []string{"1h", "12h", "84:00:00"}
	default:
		return nil
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage slurmpy configuration",
	Long: `Manage slurmpy configuration settings.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SLURMPY_*)
  3. User config file (~/.config/slurmpy/config.yaml)
  4. System config file (/etc/slurmpy/config.yaml)
  5. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display current configuration values.

Shows the config file in use, every setting with its effective value, and
any environment variable overrides.`,
	Run: func(cmd *cobra.Command, args []string) {
		if showPath {
			configPath, err := config.GetUserConfigPath()
			if err != nil {
				utils.PrintError("Failed to get config path: %v", err)
				os.Exit(1)
			}
			fmt.Println(configPath)
			return
		}

		fmt.Println(utils.StyleTitle("Config File:"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("  %s\n", used)
		} else {
			fmt.Printf("  %s (use 'slurmpy config init' to create)\n", utils.StyleWarning("No config file found"))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Settings:"))
		for _, key := range config.ConfigKeys() {
			fmt.Printf("  %-14s %v\n", key, viper.Get(key))
		}
		fmt.Println()

		fmt.Println(utils.StyleTitle("Environment Overrides:"))
		found := false
		for _, key := range config.ConfigKeys() {
			envVar := config.EnvVarForKey(key)
			if value, ok := os.LookupEnv(envVar); ok {
				fmt.Printf("  %s=%s\n", envVar, value)
				found = true
			}
		}
		if !found {
			fmt.Printf("  %s\n", utils.StyleNote("none"))
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a specific configuration value.

Examples:
  slurmpy config get sbatch_bin
  slurmpy config get scripts_dir
  slurmpy config get tries`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := viper.Get(key)
		if value == nil {
			utils.PrintError("Unknown config key: %s", key)
			os.Exit(1)
		}
		fmt.Println(value)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save to config file.

Examples:
  slurmpy config set sbatch_bin /opt/slurm/bin/sbatch
  slurmpy config set scripts_dir /scratch/$USER/slurm-scripts
  slurmpy config set default_time 12:00:00
  slurmpy config set tries 3
  slurmpy config set date_in_name false

Time duration format (for default_time):
  Go style:  2h, 30m, 1h30m
  HPC style: 02:00:00, 2:30:00, 1:30 (HH:MM:SS or HH:MM)`,
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: configKeysCompletion,
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		if !config.IsKnownKey(key) {
			utils.PrintWarning("Warning: '%s' is not a standard config key", key)
		}

		// Validate value based on key type
		switch key {
		case "default_time":
			if _, err := utils.ParseDuration(value); err != nil {
				utils.PrintError("Invalid duration format: %s", value)
				utils.PrintHint("Use format like: 2h, 30m, 1h30m, or 02:00:00")
				os.Exit(1)
			}
		case "tries":
			if n, err := strconv.Atoi(value); err != nil || n < 1 {
				utils.PrintError("tries must be a positive integer, got: %s", value)
				os.Exit(1)
			}
		case "date_in_name", "bash_strict":
			if _, err := strconv.ParseBool(value); err != nil {
				utils.PrintError("%s must be true or false, got: %s", key, value)
				os.Exit(1)
			}
		case "sbatch_bin":
			if !config.ValidateBinary(value) {
				utils.PrintWarning("'%s' is not an executable file on this host", value)
			}
		}

		viper.Set(key, value)

		if err := config.SaveConfig(); err != nil {
			utils.PrintError("Failed to save config: %v", err)
			os.Exit(1)
		}

		configPath, _ := config.GetUserConfigPath()
		utils.PrintSuccess("Set %s = %s", utils.StyleInfo(key), utils.StyleInfo(value))
		utils.PrintNote("Config saved to: %s", configPath)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file with defaults",
	Long: `Create a configuration file with default values and the auto-detected
sbatch binary at ~/.config/slurmpy/config.yaml.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			utils.PrintError("Failed to get config path: %v", err)
			os.Exit(1)
		}

		if _, err := os.Stat(configPath); err == nil {
			utils.PrintWarning("Config file already exists: %s", configPath)
			fmt.Print("Overwrite? [y/N]: ")
			var response string
			fmt.Scanln(&response)
			response = strings.ToLower(strings.TrimSpace(response))
			if response != "y" && response != "yes" {
				utils.PrintNote("Cancelled")
				return
			}
		}

		if sbatchBin := config.DetectSbatchBin(); sbatchBin != "" {
			viper.Set("sbatch_bin", sbatchBin)
		}
		if err := config.SaveConfig(); err != nil {
			utils.PrintError("Failed to create config: %v", err)
			os.Exit(1)
		}
		utils.PrintSuccess("Created config file: %s", configPath)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit config file in default editor",
	Long:  "Open the configuration file in your default text editor ($EDITOR)",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := config.GetUserConfigPath()
		if err != nil {
			utils.PrintError("Failed to get config path: %v", err)
			os.Exit(1)
		}

		// Create config if it doesn't exist
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			utils.PrintNote("Config file doesn't exist, creating it first...")
			if err := config.SaveConfig(); err != nil {
				utils.PrintError("Failed to create config: %v", err)
				os.Exit(1)
			}
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi" // fallback to vi
		}

		editorCmd := exec.Command(editor, configPath)
		editorCmd.Stdin = os.Stdin
		editorCmd.Stdout = os.Stdout
		editorCmd.Stderr = os.Stderr

		if err := editorCmd.Run(); err != nil {
			utils.PrintError("Failed to open editor: %v", err)
			os.Exit(1)
		}
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Check if the current configuration is usable for generating and submitting jobs",
	Run: func(cmd *cobra.Command, args []string) {
		valid := true

		if !utils.QuietMode {
			fmt.Println(utils.StyleTitle("Validating configuration..."))
			fmt.Println()
		}

		sbatchBin := viper.GetString("sbatch_bin")
		if sbatchBin == "" {
			if !utils.QuietMode {
				fmt.Printf("%s Sbatch binary: %s\n", utils.StyleWarning("⚠"), "not configured (scripts can still be generated)")
			}
		} else if config.ValidateBinary(sbatchBin) {
			if !utils.QuietMode {
				fmt.Printf("%s Sbatch binary: %s\n", utils.StyleSuccess("✓"), sbatchBin)
			}
		} else {
			fmt.Printf("%s Sbatch binary not found: %s\n", utils.StyleError("✗"), sbatchBin)
			valid = false
		}

		scriptsDir := viper.GetString("scripts_dir")
		if scriptsDir != "" {
			if !utils.QuietMode {
				fmt.Printf("%s Scripts directory: %s\n", utils.StyleSuccess("✓"), scriptsDir)
			}
		} else {
			fmt.Printf("%s Scripts directory empty; the built-in default applies (use --tmp for temp files)\n", utils.StyleWarning("⚠"))
		}

		if defaultTime := viper.GetString("default_time"); defaultTime != "" {
			if _, err := utils.ParseDuration(defaultTime); err == nil {
				if !utils.QuietMode {
					fmt.Printf("%s Default time: %s\n", utils.StyleSuccess("✓"), defaultTime)
				}
			} else {
				fmt.Printf("%s Default time not parseable: %s\n", utils.StyleError("✗"), defaultTime)
				valid = false
			}
		}

		tries := viper.GetInt("tries")
		if tries >= 1 {
			if !utils.QuietMode {
				fmt.Printf("%s Tries: %d\n", utils.StyleSuccess("✓"), tries)
			}
		} else {
			fmt.Printf("%s Tries must be >= 1: %d\n", utils.StyleError("✗"), tries)
			valid = false
		}

		if !utils.QuietMode {
			fmt.Println()
		}
		if valid {
			if !utils.QuietMode {
				utils.PrintSuccess("Configuration is valid")
			}
		} else {
			utils.PrintError("Configuration has errors")
			os.Exit(1)
		}
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showPath, "path", false, "Show only the config file path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configValidateCmd)

	rootCmd.AddCommand(configCmd)
}
