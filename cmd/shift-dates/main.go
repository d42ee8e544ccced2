// Command shift-dates moves one user's demo data from a source month into a
// target month.
//
//	shift-dates --userId=<uuid> --sourceMonth=2025-11 --targetMonth=2025-06 [--dry-run]
package main

import (
	"os"

	"github.com/mmdatafocus/studio_backend/config"
	"github.com/mmdatafocus/studio_backend/utils"
)

func main() {
	code := utils.ExecuteCLI(newRootCmd(defaultRuntime()), os.Args[1:], os.Stderr)
	_ = config.ClosePubSub()
	os.Exit(code)
}
