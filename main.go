package main

import "github.com/datavue/datavue-cli/cmd"

func main() {
	cmd.Execute()
}
