// Package version contains all identifiable versioning info for
// describing the jeeves project.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	projectName = "jeeves"
	version     = "unknown"
	commit      = "unknown"
)

var Version = VersionContext{
	Name:    projectName,
	Version: version,
	Commit:  commit,
}

type VersionContext struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (vc *VersionContext) String() string {
	return fmt.Sprintf("jeeves CLI: %s+%s", vc.Version, vc.Commit)
}

func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print jeeves version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version.String())
			fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
