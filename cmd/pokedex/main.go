package main

import (
	"os"

	"github.com/grandchild/pokedex"
)

func main() {
	os.Exit(pokedex.Run())
}
