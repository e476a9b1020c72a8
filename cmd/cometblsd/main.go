package main

import (
	"context"
	"os"

	"cosmossdk.io/log"

	"github.com/cometbls/ibc-lightclient/cmd/cometblsd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.NewLogger(rootCmd.OutOrStderr()).Error("failure when running app", "err", err)
		os.Exit(1)
	}
}
