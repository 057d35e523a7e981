package main

import "example.com/FtBench/cmd"

func main() {
	cmd.Execute()
}
