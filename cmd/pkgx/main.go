package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"github.com/YadongOfficial/pkgx/internal/cli"
	"github.com/YadongOfficial/pkgx/internal/config"
	"github.com/YadongOfficial/pkgx/internal/printer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	if err := cli.New(cfg).Run(context.Background(), os.Args); err != nil {
		printer.PrintError(err.Error())
		os.Exit(1)
	}
}
