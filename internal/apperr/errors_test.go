package apperr

import (
	"errors"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad id"), KindValidation},
		{"not found", NotFound("node %q", "x"), KindNotFound},
		{"provider", Provider(errors.New("timeout"), "backend call"), KindProvider},
		{"serialization", Serialization("components[0].id", "missing"), KindSerialization},
		{"wrapped", errors.Join(errors.New("outer"), NotFound("inner")), KindNotFound},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSentinelMatching(t *testing.T) {
	err := NotFound("node %q", "a")
	if !errors.Is(err, ErrNotFound) {
		t.Error("kinded error must match its sentinel")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("kinded error must not match other sentinels")
	}
}

func TestProviderPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Provider(cause, "correction call failed")
	if !errors.Is(err, cause) {
		t.Error("cause must survive wrapping")
	}
}

func TestSerializationNamesField(t *testing.T) {
	err := Serialization("connections[2].targetId", "unknown node id %q", "ghost")
	msg := err.Error()
	for _, want := range []string{"connections[2].targetId", "ghost", string(KindSerialization)} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}
