package main

import "github.com/numeron/brick/cmd"

func main() {
	cmd.Execute()
}
