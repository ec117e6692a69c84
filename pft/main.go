package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/MauererM/profit/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

func main() {
	// Shell completion: `COMP_INSTALL=1 pft` installs it. Complete returns
	// immediately when not running as a completer.
	sub := make(map[string]*complete.Command)
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{Args: predict.Something}
	}
	completer := &complete.Command{
		Sub:   sub,
		Flags: map[string]complete.Predictor{"config": predict.Files("*.toml")},
	}
	completer.Complete("pft")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
