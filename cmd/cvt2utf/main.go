package main

import "os"

// main is the entry point for the cvt2utf application.
func main() {
	os.Exit(Execute())
}
