package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/yildizm/ContractLens/internal/cli"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// a missing .env is normal; CONTRACTLENS_ variables may come from the shell
	_ = godotenv.Load()

	cmd := cli.NewRootCommand(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
