package main

import (
	"github.com/astrotime/gpstime/cmd/gpstime/cmd"
)

var version string // set by the compiler

func main() {
	cmd.Execute(version)
}
