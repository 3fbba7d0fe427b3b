package main

import "github.com/dev-mohitbeniwal/grantflow/cmd/grantctl/cmd"

func main() {
	cmd.Execute()
}
