package main

import "mnemo/pkg/cli"

func main() {
	cli.Execute()
}
