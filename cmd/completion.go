package cmd

import (
	"flag"

	"github.com/etnz/stocks/config"
	"github.com/etnz/stocks/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion returns the shell completion of the commands registered in c,
// with their flags.
//
// Install it with COMP_INSTALL=1 stockctl.
func Completion(c *subcommands.Commander) *complete.Command {
	files := predict.Files("*.json")
	root := &complete.Command{
		Sub:  make(map[string]*complete.Command),
		Args: files,
	}
	c.VisitCommands(func(_ *subcommands.CommandGroup, cmd subcommands.Command) {
		fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
		cmd.SetFlags(fs)
		sub := &complete.Command{
			Flags: make(map[string]complete.Predictor),
			Args:  files,
		}
		fs.VisitAll(func(f *flag.Flag) { sub.Flags[f.Name] = predictFlag(f) })
		if cmd.Name() == "topic" {
			sub.Args = predict.Set(topics())
		}
		root.Sub[cmd.Name()] = sub
	})
	return root
}

func predictFlag(f *flag.Flag) complete.Predictor {
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return predict.Nothing
	}
	if f.Name == "quotes" {
		return predict.Set{config.Eastmoney, config.Yahoo}
	}
	return predict.Something
}

func topics() []string {
	all, err := docs.GetAllTopics()
	if err != nil {
		return nil
	}
	return all
}
