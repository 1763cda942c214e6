package main

import "event-sync/cmd"

func main() {
	cmd.Execute()
}
