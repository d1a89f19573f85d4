package cmd

import (
	"fmt"

	"github.com/JingyaoDOU/slurmpy/internal/config"
	"github.com/JingyaoDOU/slurmpy/internal/slurm"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

var (
	submitFlags     JobFlags
	submitDependsOn []int64
	submitTries     int
	submitSbatchBin string
)

var submitCmd = &cobra.Command{
	Use:     "submit -J NAME [flags] -- COMMAND...",
	Aliases: []string{"run"},
	Short:   "Generate a submission script and hand it to sbatch",
	Long: `Generate a SLURM submission script for COMMAND and submit it.

The script is written to the scripts directory (or a temp file with --tmp)
under a name derived from the job name plus a per-run suffix, then handed to
sbatch. The accepted job's ID is printed to stdout; the scheduler's response
is echoed to stderr.

With --tries N the same script is submitted N times up front, each extra
attempt carrying --dependency=afternotok:<previous attempt> so it only runs
if the attempt before it failed.`,
	Example: `  slurmpy submit -J align -p short -- ./align.sh sample1
  slurmpy submit -J sweep --time 12:00:00 --tries 3 -- ./sweep.sh
  slurmpy submit -J impact --swift-exe ./swift --time-end 72000 -- '$SWIFT_EXE --threads=$THREADS'
  slurmpy submit -J merge --depends-on 1201 --depends-on 1202 -- ./merge.sh`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true, // Runtime errors should not show usage
	RunE:         runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	RegisterJobFlags(submitCmd, &submitFlags)
	submitCmd.Flags().Int64SliceVar(&submitDependsOn, "depends-on", nil, "job IDs the first attempt waits on (afterok)")
	submitCmd.Flags().IntVar(&submitTries, "tries", 0, "number of failure-chained attempts to submit")
	submitCmd.Flags().StringVar(&submitSbatchBin, "sbatch-bin", "", "sbatch binary to use instead of the configured one")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	job, err := buildJobSpec(cmd, &submitFlags)
	if err != nil {
		return err
	}
	opts, err := buildRunOptions(cmd, &submitFlags)
	if err != nil {
		return err
	}

	opts.Tries = submitTries
	if !cmd.Flags().Changed("tries") {
		opts.Tries = config.Global.Tries
	}
	for _, id := range submitDependsOn {
		opts.DependsOn = append(opts.DependsOn, slurm.JobID(id))
	}

	submitter, err := resolveSubmitter(submitSbatchBin)
	if err != nil {
		return err
	}

	command := joinCommand(args)
	id, err := submitter.Submit(job, command, opts)
	if err != nil {
		return err
	}

	utils.PrintDebug("Submitted %s as job %d", job.Name(), id)
	fmt.Println(id)
	return nil
}
