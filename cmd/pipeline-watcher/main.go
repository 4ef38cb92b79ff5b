package main

import "github.com/davarch/pipeline-watcher/cmd/pipeline-watcher/cli"

func main() {
	cli.Execute()
}
