package main

import "github.com/Kishan-kumar001/mern-task-manager/cli"

func main() {
	cli.Execute()
}
