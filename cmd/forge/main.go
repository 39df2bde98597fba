package main

import "forge/pkg/exitcode"

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitcode.Exit(err)
	}
}
