// sha256sum is the content-digest helper invoked by the build driver
// after raw-binary extraction. It prints one line per file:
//
//	sha256:<hex>  <path>
//
// Digests are reported, never verified.
package main

import (
	"fmt"
	"os"

	"github.com/emberos/emberbuild/internal/hash"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sha256sum FILE...")
		os.Exit(2)
	}
	status := 0
	for _, path := range os.Args[1:] {
		digest, _, err := hash.DigestFile(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		fmt.Printf("%s  %s\n", digest, path)
	}
	os.Exit(status)
}
