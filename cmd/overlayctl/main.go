// Command overlayctl loads memory dump directories, lists and exports their
// regions, and reads composed windows from the command line.
package main

func main() {
	execute()
}
