package cmd

import (
	"fmt"

	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

var (
	scriptFlags JobFlags
	scriptShow  bool
)

var scriptCmd = &cobra.Command{
	Use:     "script -J NAME [flags] -- COMMAND...",
	Aliases: []string{"render"},
	Short:   "Generate a submission script without submitting it",
	Long: `Generate the SLURM submission script for COMMAND and write it to the
scripts directory, without talking to the scheduler. Prints the script path.

Use --show to print the script text to stdout instead of writing a file.`,
	Example: `  slurmpy script -J align -p short -- ./align.sh sample1
  slurmpy script -J align --show -- ./align.sh sample1
  slurmpy script -J impact --swift-exe ./swift --show -- '$SWIFT_EXE --threads=$THREADS'`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runScript,
}

func init() {
	rootCmd.AddCommand(scriptCmd)
	RegisterJobFlags(scriptCmd, &scriptFlags)
	scriptCmd.Flags().BoolVar(&scriptShow, "show", false, "print the script to stdout instead of writing it")
}

func runScript(cmd *cobra.Command, args []string) error {
	job, err := buildJobSpec(cmd, &scriptFlags)
	if err != nil {
		return err
	}
	opts, err := buildRunOptions(cmd, &scriptFlags)
	if err != nil {
		return err
	}

	rendered := job.Render(joinCommand(args), opts)
	if scriptShow {
		fmt.Println(rendered.Content)
		return nil
	}

	path, err := job.WriteScript(rendered)
	if err != nil {
		return err
	}
	utils.PrintDebug("Rendered %s", rendered.Name)
	fmt.Println(path)
	return nil
}
