package main

import (
	"embed"

	cmd "github.com/redhat-openshift-ecosystem/jeeves/cmd/jeeves"
	"github.com/redhat-openshift-ecosystem/jeeves/internal/assets"
)

//go:embed data/templates
var vfs embed.FS

func main() {
	assets.UpdateData(&vfs)
	cmd.Execute()
}
