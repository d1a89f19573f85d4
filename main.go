package main

import (
	"github.com/JingyaoDOU/slurmpy/cmd"
	"github.com/JingyaoDOU/slurmpy/internal/slurm"
)

func main() {
	defer slurm.CleanupTempScripts()
	cmd.Execute()
}
