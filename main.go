package main

import "github.com/back8/github-scp-079-scp-079-noflood/cmd"

func main() {
	cmd.Execute()
}
