// Command hashpw prints a bcrypt hash for ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/xelth-com/ongoingwms/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	hash, err := utils.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
