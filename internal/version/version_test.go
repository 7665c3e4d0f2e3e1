package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	assert.Equal(t, "dev (none)", Get().String())
	assert.False(t, IsRelease())

	i := Info{Version: "v1.2.0", Commit: "abc123", Dirty: "true"}
	assert.Equal(t, "v1.2.0 (abc123, dirty)", i.String())
}
