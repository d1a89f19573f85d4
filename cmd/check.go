package cmd

import (
	"fmt"
	"strings"

	"github.com/JingyaoDOU/slurmpy/internal/slurm"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

var checkShowCommand bool

var checkCmd = &cobra.Command{
	Use:   "check SCRIPT",
	Short: "Inspect the directives of a generated submission script",
	Long: `Parse a submission script and show its scheduler directives, export
assignments, and payload command.

Useful for verifying what a job asked for after the fact, since script names
carry a per-run suffix and scripts are kept on disk.`,
	Example: `  slurmpy check slurm-scripts/align-3ad05b.sh
  slurmpy check slurm-scripts/align-3ad05b.sh --command`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true, // Runtime errors should not show usage
	RunE:         runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkShowCommand, "command", false, "Also print the full payload command")
}

func runCheck(cmd *cobra.Command, args []string) error {
	parsed, err := slurm.ParseScriptFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Script: %s\n", utils.StylePath(args[0]))
	if parsed.JobName != "" {
		fmt.Printf("  Job Name:   %s\n", utils.StyleName(parsed.JobName))
	}

	if len(parsed.Directives) > 0 {
		fmt.Println("  Directives:")
		width := 0
		for _, d := range parsed.Directives {
			if len(d.Key) > width {
				width = len(d.Key)
			}
		}
		for _, d := range parsed.Directives {
			fmt.Printf("    %-*s  %s\n", width, d.Key, d.Value)
		}
	}

	if len(parsed.Exports) > 0 {
		fmt.Println("  Exports:")
		for _, v := range parsed.Exports {
			fmt.Printf("    %s=%s\n", v.Key, v.Value)
		}
	}

	command := strings.TrimSpace(parsed.Command)
	switch {
	case command == "":
		utils.PrintWarning("Script has no payload command after the separator")
	case checkShowCommand:
		fmt.Println("  Command:")
		for _, line := range strings.Split(command, "\n") {
			fmt.Printf("    %s\n", line)
		}
	default:
		first, _, _ := strings.Cut(command, "\n")
		fmt.Printf("  Command:    %s\n", utils.StyleCommand(first))
	}

	if !parsed.HasShebang {
		utils.PrintWarning("Script does not start with a shebang line")
	}
	if !parsed.StrictSetup {
		utils.PrintWarning("No fail-fast shell setup (set -e ...) before the payload")
	}
	if !parsed.Directives.Has("time") {
		utils.PrintWarning("No wall-clock directive found; the cluster default applies")
	}
	return nil
}
