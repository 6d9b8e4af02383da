package main

import "github.com/polybridge/clob-bridge/cmd"

func main() {
	cmd.Execute()
}
