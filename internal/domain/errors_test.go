package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"explicit kind", E(KindProviderError, "generate", errors.New("quota")), KindProviderError},
		{"wrapped explicit kind", fmt.Errorf("outer: %w", E(KindStructural, "compute", ErrMissingRequiredLineItem)), KindStructural},
		{"missing required sentinel", fmt.Errorf("compute: %w", ErrMissingRequiredLineItem), KindStructural},
		{"insufficient data sentinel", ErrInsufficientData, KindMissingOptionalLineItem},
		{"unreadable sentinel", ErrUnreadableFile, KindUnreadableFile},
		{"credential sentinel", ErrCredentialMissing, KindCredentialMissing},
		{"anything else", errors.New("boom"), KindUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	err := E(KindStructural, "compute", ErrMissingRequiredLineItem)
	if !errors.Is(err, ErrMissingRequiredLineItem) {
		t.Fatal("expected errors.Is to see the sentinel")
	}
	if err.Error() != "compute: missing required line item" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if E(KindStructural, "x", nil) != nil {
		t.Error("E(nil) should be nil")
	}
}

func TestTableClone(t *testing.T) {
	orig := StatementTable{Items: []LineItem{{Label: "A", Prior: 1, Current: 2, Derived: &Derived{GrowthPct: 100}}}}
	cp := orig.Clone()
	cp.Items[0].Derived.GrowthPct = 5
	cp.Items[0].Label = "B"
	if orig.Items[0].Derived.GrowthPct != 100 || orig.Items[0].Label != "A" {
		t.Error("clone shares state with original")
	}
}
