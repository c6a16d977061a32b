package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codeanticode/processing-openjdk/internal/prof"
)

var profSession *prof.Session

func startProfiling(cmd *cobra.Command) error {
	root := cmd.Root()
	cpuPath, err := root.PersistentFlags().GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	memPath, err := root.PersistentFlags().GetString("memprofile")
	if err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	tracePath, err := root.PersistentFlags().GetString("runtime-trace")
	if err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if cpuPath == "" && memPath == "" && tracePath == "" {
		return nil
	}
	profSession, err = prof.Start(prof.Options{CPU: cpuPath, Mem: memPath, Trace: tracePath})
	return err
}

func stopProfiling() {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "pdepp: profiling: %v\n", err)
	}
	profSession = nil
}
