package main

import (
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			if err := runScan(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "merge":
			if err := runMerge(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("poiscan " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	printUsage()
	os.Exit(2)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `poiscan - Mexico City point-of-interest dataset scanner

Usage:
  poiscan scan [flags]    Scan the metro area and write a CSV dataset
  poiscan merge [flags]   Merge existing Google and INEGI datasets
  poiscan version         Show version

Run 'poiscan scan --help' or 'poiscan merge --help' for flags.
`)
}
