package main

import (
	bridgecmd "github.com/initializ/gemini-bridge/cmd"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	bridgecmd.SetVersionInfo(version, commit)
	bridgecmd.Execute()
}
