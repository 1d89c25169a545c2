package auth

import (
	"os"
	"path/filepath"
	"testing"
)

type memRepo struct{ members []Member }

func (m *memRepo) LoadAll() ([]Member, error) { return append([]Member{}, m.members...), nil }
func (m *memRepo) Upsert(u Member) error {
	for i, x := range m.members {
		if x.ID == u.ID {
			m.members[i] = u
			return nil
		}
	}
	m.members = append(m.members, u)
	return nil
}
func (m *memRepo) Remove(id int64) error {
	out := make([]Member, 0, len(m.members))
	for _, x := range m.members {
		if x.ID != id {
			out = append(out, x)
		}
	}
	m.members = out
	return nil
}

func TestServiceBasic(t *testing.T) {
	repo := &memRepo{members: []Member{{ID: 10, Username: "alice"}}}
	svc, err := NewWithRepo(repo, []int64{20}, 99)
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	if !svc.IsAllowed(10) {
		t.Fatalf("repo preload not effective")
	}
	if !svc.IsAllowed(20) {
		t.Fatalf("initial env list not merged")
	}
	if !svc.IsAllowed(99) || !svc.IsAdmin(99) {
		t.Fatalf("admin must be allowed")
	}
	if svc.IsAllowed(30) {
		t.Fatalf("unexpected allowed")
	}

	if err := svc.Allow(Member{ID: 30, Username: "bob", AddedBy: 99}); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !svc.IsAllowed(30) || len(repo.members) != 2 {
		t.Fatalf("allow not effective")
	}

	if err := svc.Revoke(10); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if svc.IsAllowed(10) {
		t.Fatalf("revoke not effective")
	}
	if err := svc.Revoke(99); err != nil || !svc.IsAllowed(99) {
		t.Fatalf("admin must not be revocable")
	}

	lst := svc.List()
	if len(lst) != 3 || lst[0].ID != 20 || lst[2].ID != 99 {
		t.Fatalf("unexpected list: %+v", lst)
	}
}

func TestFileRepository_CRUD(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "data", "allowlist.json"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	items, err := repo.LoadAll()
	if err != nil || len(items) != 0 {
		t.Fatalf("empty file should load as empty list: %v %+v", err, items)
	}

	if err := repo.Upsert(Member{ID: 1, Username: "alice"}); err != nil {
		t.Fatalf("upsert1: %v", err)
	}
	if err := repo.Upsert(Member{ID: 2, Username: "bob"}); err != nil {
		t.Fatalf("upsert2: %v", err)
	}
	if err := repo.Upsert(Member{ID: 1, Username: "alice2"}); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	items, err = repo.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 2 || items[0].Username != "alice2" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if err := repo.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}
	items, _ = repo.LoadAll()
	if len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestFileRepository_KeepsSortedByID(t *testing.T) {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "allowlist.json"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, id := range []int64{30, 10, 20} {
		if err := repo.Upsert(Member{ID: id}); err != nil {
			t.Fatalf("upsert %d: %v", id, err)
		}
	}
	if err := repo.Remove(99); err != nil {
		t.Fatalf("remove unknown: %v", err)
	}
	items, err := repo.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 3 || items[0].ID != 10 || items[1].ID != 20 || items[2].ID != 30 {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestFileRepository_CorruptFileIsNotOverwritten(t *testing.T) {
	p := filepath.Join(t.TempDir(), "allowlist.json")
	corrupt := []byte(`[{"id": 1, "username": "alice"`)
	if err := os.WriteFile(p, corrupt, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo, err := NewFileRepository(p)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := repo.LoadAll(); err == nil {
		t.Fatalf("expected decode error")
	}
	if err := repo.Upsert(Member{ID: 2}); err == nil {
		t.Fatalf("upsert must fail on a corrupt file")
	}
	if err := repo.Remove(1); err == nil {
		t.Fatalf("remove must fail on a corrupt file")
	}
	if _, err := NewWithRepo(repo, nil, 99); err == nil {
		t.Fatalf("service must not start on a corrupt allowlist")
	}
	got, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(corrupt) {
		t.Fatalf("file was modified: %s", got)
	}
}
