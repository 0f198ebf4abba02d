// Package main is the entry point for the ingestd message-ingest daemon.
package main

import (
	"firestige.xyz/ingestd/cmd"
)

func main() {
	cmd.Execute()
}
