package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"groomcal/backend/internal/domain"
	"groomcal/backend/internal/store"
)

func TestPostgresIntegration_CalendarOverlapStatesAndNotifications(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("GROOMCAL_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("GROOMCAL_TEST_DATABASE_URL not set")
	}

	db, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "groomcal_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	ten := domain.TimeOfDay(10 * 60)
	eleven := domain.TimeOfDay(11 * 60)
	halfTen := domain.TimeOfDay(10*60 + 30)
	halfEleven := domain.TimeOfDay(11*60 + 30)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema).Exec(ctx); err != nil {
			return err
		}
		if err := applyMigrations(ctx, tx); err != nil {
			return err
		}

		c := calendarTx{tx: tx}

		a1, err := c.InsertAppointment(ctx, domain.Appointment{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000901"),
			PetID:     "p1",
			GroomerID: "g1",
			ClientID:  "c1",
			Date:      date,
			StartTime: ten,
			EndTime:   eleven,
			State:     domain.StateConfirmed,
		})
		if err != nil {
			return err
		}

		rows, err := c.ListAppointments(ctx, "g1", date, domain.ActiveStates...)
		if err != nil {
			return err
		}
		if len(rows) != 1 || rows[0].ID != a1.ID {
			return fmt.Errorf("listed rows = %v, want just %s", rows, a1.ID)
		}

		// The exclusion constraint rejects the overlap even without the
		// service-level check.
		_, err = c.InsertAppointment(ctx, domain.Appointment{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000902"),
			PetID:     "p2",
			GroomerID: "g1",
			ClientID:  "c2",
			Date:      date,
			StartTime: halfTen,
			EndTime:   halfEleven,
			State:     domain.StatePending,
		})
		if err != store.ErrConflict {
			return fmt.Errorf("overlap err = %v, want %v", err, store.ErrConflict)
		}

		// Touching slots share a boundary minute and are allowed.
		a2, err := c.InsertAppointment(ctx, domain.Appointment{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000903"),
			PetID:     "p2",
			GroomerID: "g1",
			ClientID:  "c2",
			Date:      date,
			StartTime: eleven,
			EndTime:   domain.TimeOfDay(12 * 60),
			State:     domain.StatePending,
		})
		if err != nil {
			return err
		}

		// Cancelled rows are outside the constraint's partial predicate, so
		// their slot is immediately reusable.
		if err := c.UpdateAppointmentState(ctx, a2.ID, domain.StatePending, domain.StateCancelled, time.Now()); err != nil {
			return err
		}
		_, err = c.InsertAppointment(ctx, domain.Appointment{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000904"),
			PetID:     "p3",
			GroomerID: "g1",
			ClientID:  "c3",
			Date:      date,
			StartTime: eleven,
			EndTime:   domain.TimeOfDay(12 * 60),
			State:     domain.StatePending,
		})
		if err != nil {
			return err
		}

		// The pet index rejects a second active appointment for the same
		// pet on the date even under another groomer.
		_, err = c.InsertAppointment(ctx, domain.Appointment{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000905"),
			PetID:     "p1",
			GroomerID: "g2",
			ClientID:  "c1",
			Date:      date,
			StartTime: domain.TimeOfDay(15 * 60),
			EndTime:   domain.TimeOfDay(16 * 60),
			State:     domain.StatePending,
		})
		if err != store.ErrPetConflict {
			return fmt.Errorf("pet conflict err = %v, want %v", err, store.ErrPetConflict)
		}

		// A conditional update against the wrong source state is stale, and
		// against a missing row is not found.
		err = c.UpdateAppointmentState(ctx, a2.ID, domain.StatePending, domain.StateConfirmed, time.Now())
		if err != store.ErrStaleState {
			return fmt.Errorf("stale err = %v, want %v", err, store.ErrStaleState)
		}
		err = c.UpdateAppointmentState(ctx, uuid.MustParse("00000000-0000-0000-0000-000000000999"), domain.StatePending, domain.StateConfirmed, time.Now())
		if err != store.ErrNotFound {
			return fmt.Errorf("missing err = %v, want %v", err, store.ErrNotFound)
		}

		ev, err := c.InsertNotification(ctx, domain.NewNotification(&a1, domain.NotificationReminder))
		if err != nil {
			return err
		}
		if ev.ID == uuid.Nil {
			return fmt.Errorf("expected notification id to be assigned")
		}
		has, err := c.HasNotification(ctx, a1.ID, domain.NotificationReminder)
		if err != nil {
			return err
		}
		if !has {
			return fmt.Errorf("expected reminder to exist")
		}

		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type mig struct {
		name string
		path string
	}
	migs := make([]mig, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		migs = append(migs, mig{name: e.Name(), path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(migs, func(i, j int) bool { return migs[i].name < migs[j].name })

	for _, m := range migs {
		b, err := os.ReadFile(m.path)
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if normalized, ok := normalizeExtensionStatement(stmt); ok {
				stmt = normalized
			}
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return err
			}
		}
	}

	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	base := filepath.Dir(file)
	return filepath.Clean(filepath.Join(base, "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

// The test schema has its own search_path; btree_gist still has to land in
// public so the exclusion constraint can find its operator classes.
func normalizeExtensionStatement(stmt string) (string, bool) {
	s := strings.TrimSpace(stmt)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "CREATE EXTENSION") {
		return "", false
	}
	if !strings.Contains(upper, "BTREE_GIST") {
		return "", false
	}
	if strings.Contains(upper, " SCHEMA ") {
		return "", false
	}
	return s + " SCHEMA public", true
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
