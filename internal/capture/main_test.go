//go:build unix

package capture

import (
	"os"
	"testing"

	"github.com/joeycumines/ptyshot/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.RunHelperIfRequested()
	os.Exit(m.Run())
}
