package main

import (
	"log"

	"github.com/too-r/lai/flag"
)

func main() {
	if err := flag.Parse(); err != nil {
		log.Fatal(err)
	}
}
