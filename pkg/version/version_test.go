package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString(t *testing.T) {
	vc := VersionContext{Name: "jeeves", Version: "v0.3.0", Commit: "abc123"}
	assert.Equal(t, "jeeves CLI: v0.3.0+abc123", vc.String())
}
