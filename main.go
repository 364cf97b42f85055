package main

import "parking-console/cmd"

func main() {
	cmd.Execute()
}
