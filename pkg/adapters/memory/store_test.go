package memory_test

import (
	"testing"

	"github.com/claritydental/walkout/pkg/adapters/memory"
	"github.com/claritydental/walkout/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.RunWalkoutStoreContract(t, memory.NewStore())
}
