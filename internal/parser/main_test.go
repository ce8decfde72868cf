package parser

import (
	"os"
	"testing"

	"github.com/lacquerai/deriv/internal/testhelper"
)

func TestMain(m *testing.M) {
	os.Exit(testhelper.Run(m))
}
