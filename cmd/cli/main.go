package main

import "github.com/mandrykarina/GC/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
