package main

import "github.com/jmorris/officiantfinder/cmd"

func main() {
	cmd.Execute()
}
