package main

import "XingHe-API/cli/cmd"

func main() {
	cmd.Execute()
}
