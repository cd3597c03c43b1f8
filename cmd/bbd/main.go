// Command bbd views and corrects the BBD value of receipt lines.
package main

import "github.com/mesh-intelligence/bbd/internal/cli"

func main() {
	cli.Execute()
}
