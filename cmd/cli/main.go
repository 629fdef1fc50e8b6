package main

import "hellotcp/cmd/cli/command"

func main() {
	command.Execute()
}
