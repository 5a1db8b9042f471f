package memory

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	domain "todo-server/internal/domain/model"
)

func TestTodoRepository_Create(t *testing.T) {
	t.Run("assigns unique non-empty ids", func(t *testing.T) {
		repo := NewTodoRepository()

		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			todo := repo.Create(domain.Draft{Title: fmt.Sprintf("t%d", i), Status: "open"})
			if todo.ID == "" {
				t.Fatal("expected non-empty id")
			}
			if seen[todo.ID] {
				t.Fatalf("duplicate id %s", todo.ID)
			}
			seen[todo.ID] = true
		}
	})

	t.Run("created todo is visible via GetByID", func(t *testing.T) {
		repo := NewTodoRepository()

		created := repo.Create(domain.Draft{Title: "buy milk", Status: "open"})
		got, err := repo.GetByID(created.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got != created {
			t.Errorf("expected %+v, got %+v", created, got)
		}
		if got.Deleted {
			t.Error("new todo should not be deleted")
		}
	})

	t.Run("regenerates colliding ids", func(t *testing.T) {
		ids := []string{"a", "a", "", "b"}
		var mu sync.Mutex
		gen := func() string {
			mu.Lock()
			defer mu.Unlock()
			id := ids[0]
			if len(ids) > 1 {
				ids = ids[1:]
			}
			return id
		}
		repo := NewTodoRepository(WithIDGenerator(gen))

		first := repo.Create(domain.Draft{Title: "one"})
		second := repo.Create(domain.Draft{Title: "two"})
		if first.ID != "a" {
			t.Errorf("expected first id a, got %q", first.ID)
		}
		if second.ID != "b" {
			t.Errorf("expected second id b, got %q", second.ID)
		}
	})

	t.Run("falls back to random ids when generator is stuck", func(t *testing.T) {
		repo := NewTodoRepository(WithIDGenerator(func() string { return "fixed" }))

		first := repo.Create(domain.Draft{})
		second := repo.Create(domain.Draft{})
		if first.ID != "fixed" {
			t.Errorf("expected first id fixed, got %q", first.ID)
		}
		if second.ID == "" || second.ID == "fixed" {
			t.Errorf("expected fresh id, got %q", second.ID)
		}
	})
}

func TestTodoRepository_GetByID(t *testing.T) {
	repo := NewTodoRepository()

	if _, err := repo.GetByID("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	created := repo.Create(domain.Draft{Title: "x"})
	if err := repo.SoftDelete(created.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := repo.GetByID(created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted todo, got %v", err)
	}
}

func TestTodoRepository_List(t *testing.T) {
	t.Run("empty store returns empty non-nil slice", func(t *testing.T) {
		repo := NewTodoRepository()
		todos := repo.List()
		if todos == nil {
			t.Fatal("expected non-nil slice")
		}
		if len(todos) != 0 {
			t.Errorf("expected 0 todos, got %d", len(todos))
		}
	})

	t.Run("preserves insertion order and hides deleted", func(t *testing.T) {
		repo := NewTodoRepository()
		a := repo.Create(domain.Draft{Title: "a"})
		b := repo.Create(domain.Draft{Title: "b"})
		c := repo.Create(domain.Draft{Title: "c"})

		if err := repo.SoftDelete(b.ID); err != nil {
			t.Fatalf("SoftDelete: %v", err)
		}

		todos := repo.List()
		if len(todos) != 2 {
			t.Fatalf("expected 2 todos, got %d", len(todos))
		}
		if todos[0].ID != a.ID || todos[1].ID != c.ID {
			t.Errorf("unexpected order: %+v", todos)
		}
		for _, todo := range todos {
			if todo.Deleted {
				t.Errorf("List returned deleted todo %s", todo.ID)
			}
		}
	})

	t.Run("returned values are copies", func(t *testing.T) {
		repo := NewTodoRepository()
		created := repo.Create(domain.Draft{Title: "orig"})

		todos := repo.List()
		todos[0].Title = "mutated"

		got, _ := repo.GetByID(created.ID)
		if got.Title != "orig" {
			t.Errorf("store mutated through List result: %q", got.Title)
		}
	})
}

func TestTodoRepository_Update(t *testing.T) {
	t.Run("replaces title and status only", func(t *testing.T) {
		repo := NewTodoRepository()
		created := repo.Create(domain.Draft{Title: "old", Status: "open"})

		updated, err := repo.Update(created.ID, domain.Draft{Title: "new", Status: "done"})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.ID != created.ID {
			t.Errorf("id changed: %s -> %s", created.ID, updated.ID)
		}
		if updated.Deleted {
			t.Error("update should not set deleted")
		}
		if updated.Title != "new" || updated.Status != "done" {
			t.Errorf("unexpected update result %+v", updated)
		}

		got, _ := repo.GetByID(created.ID)
		if got != updated {
			t.Errorf("expected stored %+v, got %+v", updated, got)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := NewTodoRepository()
		if _, err := repo.Update("nope", domain.Draft{}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deleted id", func(t *testing.T) {
		repo := NewTodoRepository()
		created := repo.Create(domain.Draft{Title: "x"})
		_ = repo.SoftDelete(created.ID)

		if _, err := repo.Update(created.ID, domain.Draft{Title: "y"}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTodoRepository_SoftDelete(t *testing.T) {
	repo := NewTodoRepository()
	created := repo.Create(domain.Draft{Title: "x"})

	if err := repo.SoftDelete(created.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := repo.SoftDelete(created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := repo.SoftDelete("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown id: expected ErrNotFound, got %v", err)
	}

	stats := repo.Stats()
	if stats.Total != 1 || stats.Deleted != 1 || stats.Visible != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestTodoRepository_Concurrency(t *testing.T) {
	t.Run("concurrent creates never collide", func(t *testing.T) {
		repo := NewTodoRepository()

		const workers = 16
		const perWorker = 50

		var wg sync.WaitGroup
		ids := make(chan string, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					ids <- repo.Create(domain.Draft{Title: "t"}).ID
				}
			}()
		}
		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			if seen[id] {
				t.Fatalf("duplicate id %s", id)
			}
			seen[id] = true
		}
		if len(seen) != workers*perWorker {
			t.Errorf("expected %d ids, got %d", workers*perWorker, len(seen))
		}
		if n := len(repo.List()); n != workers*perWorker {
			t.Errorf("expected %d listed todos, got %d", workers*perWorker, n)
		}
	})

	t.Run("concurrent updates never tear", func(t *testing.T) {
		repo := NewTodoRepository()
		created := repo.Create(domain.Draft{Title: "t0", Status: "s0"})

		valid := map[domain.Draft]bool{{Title: "t0", Status: "s0"}: true}
		var wg sync.WaitGroup
		for w := 0; w < 8; w++ {
			draft := domain.Draft{Title: fmt.Sprintf("t%d", w+1), Status: fmt.Sprintf("s%d", w+1)}
			valid[draft] = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					if _, err := repo.Update(created.ID, draft); err != nil {
						t.Errorf("Update: %v", err)
						return
					}
				}
			}()
		}

		done := make(chan struct{})
		var readErr error
		go func() {
			defer close(done)
			for i := 0; i < 500; i++ {
				got, err := repo.GetByID(created.ID)
				if err != nil {
					readErr = err
					return
				}
				if !valid[domain.Draft{Title: got.Title, Status: got.Status}] {
					readErr = fmt.Errorf("torn record %+v", got)
					return
				}
			}
		}()

		wg.Wait()
		<-done
		if readErr != nil {
			t.Fatal(readErr)
		}
	})

	t.Run("racing deletes succeed exactly once", func(t *testing.T) {
		repo := NewTodoRepository()
		created := repo.Create(domain.Draft{Title: "x"})

		var wg sync.WaitGroup
		var mu sync.Mutex
		successes := 0
		for w := 0; w < 10; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := repo.SoftDelete(created.ID); err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if successes != 1 {
			t.Errorf("expected exactly one successful delete, got %d", successes)
		}
	})
}
