package main

import "github.com/fulmenhq/relinfo/cmd"

func main() {
	cmd.Execute()
}
