package main

import "household-tasks.com/household-tasks/cmd"

func main() {
	cmd.Execute()
}
