package ctx

import (
	"context"
	"testing"

	"github.com/krakosik/demoday/internal/service"
)

func TestAdminActionRoundTrip(t *testing.T) {
	if _, ok := GetAdminActionFromContext(context.Background()); ok {
		t.Fatal("expected no action on a bare context")
	}
	c := WithAdminAction(context.Background(), service.ActionEditRoster)
	action, ok := GetAdminActionFromContext(c)
	if !ok || action != service.ActionEditRoster {
		t.Fatalf("expected edit_roster, got %q %v", action, ok)
	}
}
