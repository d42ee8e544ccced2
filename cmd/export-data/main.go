// Command export-data writes everything one user owns to a JSON (or .xlsx)
// snapshot, locally or to a gs:// object.
//
//	export-data --userId=<uuid> --output=export.json
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
