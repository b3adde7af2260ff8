// Package main is the entry point for the vidplay application.
package main

import (
	"github.com/samber/lo"
	"github.com/vidplay-cli/vidplay/cmd"
	"github.com/vidplay-cli/vidplay/config"
	"github.com/vidplay-cli/vidplay/internal/sweep"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/where"
)

func main() {
	rejected := lo.Must(config.Setup())
	lo.Must0(log.Setup())

	for _, err := range rejected {
		log.Warnf("%v; using the default", err)
	}

	if dir, err := where.Runtime(); err == nil {
		sweep.Sockets(dir)
	} else {
		log.Warnf("skipping socket sweep: %v", err)
	}

	cmd.Execute()
}
