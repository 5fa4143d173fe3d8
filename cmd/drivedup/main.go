package main

import (
	"github.com/dl-alexandre/drivedup/internal/cli"
)

func main() {
	_ = cli.Execute()
}
