package store

import (
	"testing"

	"github.com/hearth-app/hearth/internal/model"
)

func TestInviteLifecycle(t *testing.T) {
	f := newFixture(t, model.KindShopping)

	inv, err := f.households.CreateInvite(f.household.ID, "guest@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if inv.Token == "" {
		t.Fatal("invite has no token")
	}

	guest, err := f.users.Create("guest@example.com", "Guest", "hash")
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}

	accepted, err := f.households.AcceptInvite(inv.Token, guest.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted == nil || accepted.HouseholdID != f.household.ID {
		t.Fatalf("accepted = %+v", accepted)
	}

	member, err := f.households.GetMember(f.household.ID, guest.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member == nil || member.Role != model.RoleMember {
		t.Fatalf("member = %+v", member)
	}

	// A consumed token cannot be used again.
	again, err := f.households.AcceptInvite(inv.Token, guest.ID)
	if err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	if again != nil {
		t.Fatal("consumed invite accepted a second time")
	}

	// Unknown tokens are rejected without error.
	unknown, err := f.households.AcceptInvite("no-such-token", guest.ID)
	if err != nil {
		t.Fatalf("unknown token: %v", err)
	}
	if unknown != nil {
		t.Fatal("unknown invite token accepted")
	}
}

func TestFirstForUser(t *testing.T) {
	f := newFixture(t, model.KindShopping)

	got, err := f.households.FirstForUser(f.user.ID)
	if err != nil {
		t.Fatalf("first for user: %v", err)
	}
	if got != f.household.ID {
		t.Fatalf("household = %d, want %d", got, f.household.ID)
	}

	stranger, err := f.users.Create("stranger@example.com", "Stranger", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	got, err = f.households.FirstForUser(stranger.ID)
	if err != nil {
		t.Fatalf("first for stranger: %v", err)
	}
	if got != 0 {
		t.Fatalf("stranger household = %d, want 0", got)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t, model.KindShopping)

	guest, err := f.users.Create("guest@example.com", "Guest", "hash")
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	if err := f.households.AddMember(f.household.ID, guest.ID, model.RoleMember); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := f.households.RemoveMember(f.household.ID, guest.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	member, err := f.households.GetMember(f.household.ID, guest.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member != nil {
		t.Fatal("member still present after removal")
	}
}
