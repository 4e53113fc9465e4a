// Command slidekit fills template slides with text, copies slides between
// presentations, normalizes diagrams and embedded objects, and indexes
// slide text for search.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp()
	if err := a.rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
