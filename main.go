package main

import "mixdeck/cmd"

func main() {
	cmd.Execute()
}
