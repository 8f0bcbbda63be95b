// Command hash-generator prints a bcrypt hash for each password given on
// the command line. Handy for seeding development databases with known
// credentials.
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: hash-generator <password> [password ...]")
		os.Exit(1)
	}

	for _, password := range os.Args[1:] {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error hashing %q: %v\n", password, err)
			os.Exit(1)
		}
		fmt.Println(string(hash))
	}
}
