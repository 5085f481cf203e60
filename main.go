package main

import "github.com/gsingh-io/dbbackup/cmd"

func main() {
	cmd.Execute()
}
