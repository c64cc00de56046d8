// Command axiconnect simulates a multi-port bus interconnect.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/axiconnect/cmd/axiconnect/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
