// Package main is the entry point for malcr.
package main

import (
	"github.com/malcr/malcr/cmd"
	"github.com/malcr/malcr/config"
	"github.com/malcr/malcr/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
