package pipeline

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-whisperer/internal/domain/entities"
)

func userWithID(id, email, name string) *entities.User {
	u := entities.NewUser(email, name)
	u.ID = uuid.MustParse(id)
	return u
}

func TestResolve(t *testing.T) {
	bob := userWithID("00000000-0000-0000-0000-000000000002", "bob@x.test", "Bob Smith")
	bobby := userWithID("00000000-0000-0000-0000-000000000001", "bobby@x.test", "Bobby Tables")
	carol := userWithID("00000000-0000-0000-0000-000000000003", "carol@x.test", "Carol Bobson")
	users := []*entities.User{bob, bobby, carol}

	tests := []struct {
		name string
		hint *string
		want *uuid.UUID
	}{
		{"nil hint", nil, nil},
		{"blank hint", strPtr("   "), nil},
		{"exact email", strPtr("BOB@x.test"), &bob.ID},
		{"email beats name", strPtr("carol@x.test"), &carol.ID},
		{"name substring", strPtr("smith"), &bob.ID},
		{"ambiguous picks lowest id", strPtr("bob"), &bobby.ID},
		{"no match", strPtr("nobody@x.test"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.hint, users)
			switch {
			case tt.want == nil && got != nil:
				t.Fatalf("expected nil, got %s", got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Fatalf("expected %s, got %v", tt.want, got)
			}
			again := Resolve(tt.hint, users)
			if (got == nil) != (again == nil) || (got != nil && *got != *again) {
				t.Fatal("resolution must be idempotent")
			}
		})
	}
}

func TestResolve_NilWithoutUsers(t *testing.T) {
	if got := Resolve(nil, nil); got != nil {
		t.Fatalf("expected nil, got %s", got)
	}
	if got := Resolve(strPtr("bob"), nil); got != nil {
		t.Fatalf("expected nil, got %s", got)
	}
}

func TestMapPriority(t *testing.T) {
	tests := []struct {
		in   *string
		want entities.TaskPriority
	}{
		{strPtr("HIGH"), entities.TaskPriorityHigh},
		{strPtr("Urgent"), entities.TaskPriorityUrgent},
		{strPtr("low"), entities.TaskPriorityLow},
		{strPtr("critical"), entities.TaskPriorityMedium},
		{strPtr(""), entities.TaskPriorityMedium},
		{nil, entities.TaskPriorityMedium},
	}
	for _, tt := range tests {
		if got := MapPriority(tt.in); got != tt.want {
			t.Errorf("MapPriority(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	got := ParseDueDate(strPtr("2024-03-05"))
	if got == nil || got.Year() != 2024 || got.Month() != time.March || got.Day() != 5 {
		t.Fatalf("unexpected date %v", got)
	}
	for _, in := range []*string{nil, strPtr("not-a-date"), strPtr("03/05/2024"), strPtr("2024-3-5"), strPtr("")} {
		if d := ParseDueDate(in); d != nil {
			t.Errorf("expected nil for %v, got %v", in, d)
		}
	}
}
