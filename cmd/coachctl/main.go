package main

import (
	"coachlens/cmd/coachctl/cmd"
)

func main() {
	cmd.Execute()
}
