package main

import "github.com/pfrederiksen/sugarfit-crawler/internal/cli"

func main() {
	cli.Execute()
}
