package main

import "github.com/RyanBlaney/mixref/cmd"

// version is overridden with -ldflags "-X main.version=..." in release builds
var version = "0.3.0-dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
