package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/turismolocal/poiscan/internal/engine/export"
)

func runMerge(args []string) error {
	var googlePath, inegiPath, outputDir, name string

	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	fs.StringVar(&googlePath, "google", "", "Path to Google dataset CSV (required)")
	fs.StringVar(&inegiPath, "inegi", "", "Path to INEGI dataset CSV (required)")
	fs.StringVar(&outputDir, "output", ".", "Output directory")
	fs.StringVar(&name, "name", "cdmx_pois_merged", "Merged dataset base name")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: poiscan merge [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  poiscan merge -google cdmx_google_1757000000.csv -inegi cdmx_inegi_1757000100.csv\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if googlePath == "" || inegiPath == "" {
		return fmt.Errorf("-google and -inegi are required")
	}

	path, err := export.MergeFiles(googlePath, inegiPath, outputDir, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Merged dataset: %s\n", path)
	return nil
}
