package main

import "github.com/strucbio/motifq/cmd"

func main() {
	cmd.Execute()
}
