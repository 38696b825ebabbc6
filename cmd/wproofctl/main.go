// The wproofctl command manages wrale-proof overlay content, audience
// groups and page assignments.
package main

import "github.com/wrale/wrale-proof/internal/wproofctl/cmd"

func main() {
	cmd.Execute()
}
