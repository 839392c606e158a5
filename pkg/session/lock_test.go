package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/claritydental/walkout/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager()
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		appt := fmt.Sprintf("appt-%d", i)
		if _, err := mgr.Open(ctx, appt, domain.SectionOffice, "editor", "office"); err != nil {
			t.Fatalf("open %s: %v", appt, err)
		}
		if _, err := mgr.Close(ctx, appt, domain.SectionOffice); err != nil {
			t.Fatalf("close %s: %v", appt, err)
		}
	}

	// Reference counting must garbage collect every lock entry once the
	// form traffic is gone.
	if remaining := len(mgr.locks); remaining != 0 {
		t.Errorf("memory leak: %d lock entries remaining after %d open/close cycles", remaining, count)
	}
	if open := len(mgr.sessions); open != 0 {
		t.Errorf("%d sessions still open", open)
	}
}
