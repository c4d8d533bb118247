package main

import "github.com/adpulse/adpulse/cmd"

func main() {
	cmd.Execute()
}
