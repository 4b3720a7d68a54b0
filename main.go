package main

import "github.com/plainpress/server/cmd"

func main() {
	cmd.Execute()
}
