package main

import (
	"ctfrank/cmd/ctfrank/commands"
	"ctfrank/internal/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
