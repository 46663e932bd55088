package main

import "homework-transcriber/cmd"

func main() {
	cmd.Execute()
}
