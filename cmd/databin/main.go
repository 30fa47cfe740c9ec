package main

import "github.com/ssargent/databin/cmd/databin/cmd"

func main() {
	cmd.Execute()
}
