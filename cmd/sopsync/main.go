// Command sopsync keeps values in encrypted secrets files in sync with the
// output of shell commands named in "# shell:" directive comments.
package main

func main() {
	Execute()
}
