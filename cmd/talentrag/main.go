package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workmesh/talentrag/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "talentrag",
		Short: "Retrieval engine for jobs, companies, learning resources, and FAQs",
		Long: "talentrag ingests job-platform content into per-domain vector stores " +
			"and serves hybrid retrieval with LLM reranking across them",
	}

	rootCmd.AddCommand(cli.WorkerCmd())
	rootCmd.AddCommand(cli.IngestCmd())
	rootCmd.AddCommand(cli.SearchCmd())
	rootCmd.AddCommand(cli.MigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
