// Package main provides the entry point for the ragcrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for ragcrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragcrawl",
		Short: "Website crawler that produces RAG-ready text chunks",
		Long: `ragcrawl crawls a website breadth-first and converts each page into
heading-aware text chunks suitable for semantic-search / RAG indexing.

Crawls stay within the start URL's domain by default and respect
configurable page, depth, and politeness limits. Results can be printed
as plain text, JSON, CSV, or Markdown, and are saved to a local SQLite
database for later querying.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
