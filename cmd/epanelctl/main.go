package main

import "github.com/epanel-tools/epanel/cmd/epanelctl/cmd"

func main() {
	cmd.Execute()
}
