package main

import (
	"github.com/eleven-am/triage-client/internal/bootstrap"
)

func main() {
	bootstrap.Run()
}
