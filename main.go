package main

import "github.com/relloyd/psvexport/cmd"

func main() {
	cmd.Execute()
}
