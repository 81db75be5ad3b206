package main

import "github.com/edespino/rcctl/cmd"

func main() {
	cmd.Execute()
}
