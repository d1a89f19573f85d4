package cmd

import (
	"fmt"

	"github.com/JingyaoDOU/slurmpy/internal/slurm"
	"github.com/JingyaoDOU/slurmpy/internal/utils"
	"github.com/spf13/cobra"
)

var clusterSbatchBin string

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Display scheduler information",
	Long: `Display information about the SLURM installation this tool would submit to.

Shows the sbatch binary path, the cluster release, and whether the current
process is already inside a job allocation.`,
	Example: `  slurmpy cluster
  slurmpy cluster --sbatch-bin /opt/slurm/bin/sbatch`,
	Run: runCluster,
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().StringVar(&clusterSbatchBin, "sbatch-bin", "", "sbatch binary to inspect instead of the configured one")
}

func runCluster(cmd *cobra.Command, args []string) {
	submitter, err := resolveSubmitter(clusterSbatchBin)
	if err != nil {
		utils.PrintMessage("Scheduler Status: %s", utils.StyleError("Not Found"))
		utils.PrintMessage("")
		utils.PrintMessage("No sbatch binary detected on this system.")
		utils.PrintMessage("Set one with: %s", utils.StyleCommand("slurmpy config set sbatch_bin /path/to/sbatch"))
		return
	}

	fmt.Println("Scheduler Information:")
	fmt.Printf("  Binary:    %s\n", utils.StylePath(submitter.SbatchBin()))

	version, err := submitter.ClusterVersion()
	if err != nil {
		fmt.Printf("  Version:   %s\n", utils.StyleWarning("unknown"))
	} else {
		fmt.Printf("  Version:   %s\n", utils.StyleNumber(version))
		if !slurm.VersionAtLeast(version, slurm.MinSlurmVersion) {
			utils.PrintWarning("Cluster release %s predates %s; generated dependency flags may not be honored",
				version, slurm.MinSlurmVersion)
		}
	}

	if slurm.InsideJob() {
		fmt.Printf("  Status:    %s (inside job)\n", utils.StyleWarning("Allocated"))
		fmt.Println()
		fmt.Println("You are currently inside a job allocation; submissions from here create nested jobs.")
	} else {
		fmt.Printf("  Status:    %s\n", utils.StyleSuccess("Available"))
	}
}
