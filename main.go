// main is the entry point of the chartaxis CLI.
package main

import (
	"os"

	"github.com/huangsam/chartaxis/cmd"
	"github.com/huangsam/chartaxis/internal/barstore"
	"github.com/huangsam/chartaxis/internal/contract"
)

func main() {
	cmd.SetStoreManager(barstore.Manager)

	err := cmd.Execute()

	// os.Exit skips deferred calls, so shutdown runs explicitly
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	barstore.CloseStore()

	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
