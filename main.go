package main

import (
	cmd "github.com/rohmanhakim/campus-crawler/internal/cli"
)

func main() {
	cmd.Execute()
}
