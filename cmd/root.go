package cmd

import (
	"fmt"
	"os"

	"github.com/JingyaoDOU/slurmpy/internal/config"
	"github.com/JingyaoDOU/slurmpy/internal/slurm"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

var (
	debugMode bool
	quietMode bool
)

var rootCmd = &cobra.Command{
	Use:           "slurmpy",
	Short:         "Generate SLURM submission scripts and chain retries through job dependencies.",
	Version:       config.VERSION,
	SilenceErrors: true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Step 1: Load defaults (directories, retry policy, etc.)
		config.LoadDefaults()

		// Step 2: Initialize Viper (read config file, env vars)
		if err := config.InitViper(); err != nil {
			utils.PrintDebug("Error reading config file: %v", err)
		}

		// Step 3: Auto-detect sbatch if needed and save to config
		updated, err := config.AutoDetectAndSave()
		if err != nil {
			utils.PrintDebug("Failed to save config: %v", err)
		} else if updated {
			if configPath, err := config.GetUserConfigPath(); err == nil {
				utils.PrintDebug("Auto-detected sbatch saved to: %s", configPath)
			}
		}

		// Step 4: Load detected values from Viper into Global config
		config.LoadFromViper()

		// Step 5: Apply command-line flags (highest priority)
		if quietMode {
			utils.QuietMode = true
			config.Global.Quiet = true
		}
		if debugMode {
			utils.DebugMode = true
			config.Global.Debug = true
			utils.PrintDebug("Debug mode enabled")
			utils.PrintDebug("slurmpy Version: %s", utils.StyleInfo(config.VERSION))
			utils.PrintDebug("Scripts Directory: %s", config.Global.ScriptsDir)
			utils.PrintDebug("Logs Directory: %s", config.Global.LogsDir)
			if config.Global.SbatchBin != "" {
				utils.PrintDebug("Sbatch Binary: %s", config.Global.SbatchBin)
			}
		}

		// Step 6: Initialize the submitter when a usable sbatch exists
		if config.Global.SbatchBin != "" {
			submitter, err := slurm.NewSubmitterWithBinary(config.Global.SbatchBin)
			if err != nil {
				utils.PrintDebug("sbatch not usable: %v", err)
			} else {
				slurm.SetActiveSubmitter(submitter)
				utils.PrintDebug("Submitter initialized: %s", submitter.SbatchBin())
			}
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra's automatic error printing is silenced; print once and make
		// sure temp-mode scripts are removed, since os.Exit skips defers.
		fmt.Fprintln(os.Stderr, err)
		slurm.CleanupTempScripts()
		os.Exit(1)
	}
}

func init() {
	// Subcommands are attached to rootCmd in their respective init() functions
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode with verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress status messages")
}
