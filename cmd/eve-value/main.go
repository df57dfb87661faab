package main

import "github.com/wn7ant/eve-value/pkg/cli"

func main() {
	cli.Execute()
}
