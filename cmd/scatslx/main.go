// Package main provides the scatslx CLI for extracting site and subsystem
// plan data from SCATS LX files.
package main

func main() {
	Execute()
}
