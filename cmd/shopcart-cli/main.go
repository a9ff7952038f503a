package main

import (
	"shopcart-console/cmd/shopcart-cli/commands"
	"shopcart-console/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
