package main

import "github.com/aliirsyaadn/mindful-death/cmd"

func main() {
	cmd.Execute()
}
