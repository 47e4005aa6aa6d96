package attendance

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/LabaLabaSunda/Attendance-system/internal/config"
	"github.com/LabaLabaSunda/Attendance-system/internal/database"
	"github.com/LabaLabaSunda/Attendance-system/internal/models"
	"github.com/LabaLabaSunda/Attendance-system/internal/token"

	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test_attendance.db")
	db, err := database.Init(config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("Init test database failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
		os.Remove(path)
		os.Remove(path + "-shm")
		os.Remove(path + "-wal")
	})
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Create user failed: %v", err)
	}
	return user
}

// newTestService returns a service with a controllable clock, plus the
// token store backing it.
func newTestService(db *gorm.DB, strict bool, at time.Time) (*Service, *token.Store, *time.Time) {
	tokens := token.NewStore()
	svc := NewService(db, tokens, strict)
	now := at
	svc.Now = func() time.Time { return now }
	return svc, tokens, &now
}

// issue registers a token for (user, today) the way the dashboard does.
func issue(t *testing.T, tokens *token.Store, userID uint, day string) string {
	t.Helper()
	tok, err := token.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	tokens.Put(userID, tok, day)
	return tok
}

func countRows(t *testing.T, db *gorm.DB, userID uint, day string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Attendance{}).
		Where("user_id = ? AND date = ?", userID, day).
		Count(&n).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	return n
}

func TestScan_ThreeScanSequence(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "budi")

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	svc, tokens, now := newTestService(db, true, start)
	today := svc.Today()
	tok := issue(t, tokens, user.ID, today)
	idStr := fmt.Sprint(user.ID)

	// first scan: check-in
	out := svc.Scan(idStr, tok, today)
	if out.Code != CodeOK || !out.Success || out.Action != "Check-in" {
		t.Fatalf("first scan = %+v, want check-in success", out)
	}

	// second scan the same day: check-out
	*now = start.Add(9*time.Hour + 30*time.Minute)
	out = svc.Scan(idStr, tok, today)
	if out.Code != CodeOK || !out.Success || out.Action != "Check-out" {
		t.Fatalf("second scan = %+v, want check-out success", out)
	}
	if out.Duration != "9 jam 30 menit" {
		t.Errorf("duration = %q, want %q", out.Duration, "9 jam 30 menit")
	}

	// third scan: terminal state, no mutation
	out = svc.Scan(idStr, tok, today)
	if out.Code != CodeAlreadyComplete || out.Success {
		t.Fatalf("third scan = %+v, want ALREADY_COMPLETE", out)
	}

	if n := countRows(t, db, user.ID, today); n != 1 {
		t.Errorf("attendance rows = %d, want 1", n)
	}

	var att models.Attendance
	if err := db.Where("user_id = ? AND date = ?", user.ID, today).First(&att).Error; err != nil {
		t.Fatalf("load attendance: %v", err)
	}
	if att.TimeIn == nil || att.TimeOut == nil {
		t.Fatal("expected both time_in and time_out set")
	}
	if att.TimeOut.Before(*att.TimeIn) {
		t.Error("time_out before time_in")
	}
	if att.Status != models.StatusHadir {
		t.Errorf("status = %q, want %q", att.Status, models.StatusHadir)
	}
}

func TestScan_MissingParams(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "siti")

	svc, _, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	today := svc.Today()

	cases := []struct{ id, tok, date string }{
		{"", "abc", today},
		{fmt.Sprint(user.ID), "", today},
		{fmt.Sprint(user.ID), "abc", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		out := svc.Scan(tc.id, tc.tok, tc.date)
		if out.Code != CodeInvalidRequest || out.Success {
			t.Errorf("Scan(%q,%q,%q) = %+v, want INVALID_REQUEST", tc.id, tc.tok, tc.date, out)
		}
	}

	if n := countRows(t, db, user.ID, today); n != 0 {
		t.Errorf("attendance rows = %d, want 0 after rejected scans", n)
	}
}

func TestScan_UnknownUser(t *testing.T) {
	db := setupTestDB(t)

	svc, _, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))

	// user existence is checked before date validation, so even a
	// malformed date reports the missing user
	for _, date := range []string{svc.Today(), "not-a-date"} {
		out := svc.Scan("9999", "whatever", date)
		if out.Code != CodeUserNotFound || out.Success {
			t.Errorf("Scan(9999, date=%q) = %+v, want USER_NOT_FOUND", date, out)
		}
	}

	out := svc.Scan("bukan-angka", "whatever", svc.Today())
	if out.Code != CodeUserNotFound {
		t.Errorf("non-numeric user id = %+v, want USER_NOT_FOUND", out)
	}
}

func TestScan_BadDateFormat(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "andi")

	svc, tokens, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	tok := issue(t, tokens, user.ID, svc.Today())

	for _, date := range []string{"02-03-2026", "2026/03/02", "kemarin", "2026-13-40"} {
		out := svc.Scan(fmt.Sprint(user.ID), tok, date)
		if out.Code != CodeBadDateFormat || out.Success {
			t.Errorf("Scan(date=%q) = %+v, want BAD_DATE_FORMAT", date, out)
		}
	}

	if n := countRows(t, db, user.ID, svc.Today()); n != 0 {
		t.Errorf("attendance rows = %d, want 0", n)
	}
}

func TestScan_StaleDate(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "dewi")

	svc, tokens, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	tok := issue(t, tokens, user.ID, svc.Today())

	// well-formed but not today: yesterday and tomorrow both expire
	for _, date := range []string{"2026-03-01", "2026-03-03"} {
		out := svc.Scan(fmt.Sprint(user.ID), tok, date)
		if out.Code != CodeTokenExpired || out.Success {
			t.Errorf("Scan(date=%q) = %+v, want TOKEN_EXPIRED", date, out)
		}
	}
}

func TestScan_StrictTokenValidation(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "rina")

	svc, tokens, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	today := svc.Today()
	idStr := fmt.Sprint(user.ID)

	// nothing issued yet: any token is rejected
	out := svc.Scan(idStr, "tebakan", today)
	if out.Code != CodeTokenExpired {
		t.Fatalf("scan without issued token = %+v, want TOKEN_EXPIRED", out)
	}

	tok := issue(t, tokens, user.ID, today)

	// wrong token value
	out = svc.Scan(idStr, tok+"x", today)
	if out.Code != CodeTokenExpired {
		t.Fatalf("scan with wrong token = %+v, want TOKEN_EXPIRED", out)
	}

	// issuing again invalidates the old token
	fresh := issue(t, tokens, user.ID, today)
	if out := svc.Scan(idStr, tok, today); out.Code != CodeTokenExpired {
		t.Fatalf("scan with superseded token = %+v, want TOKEN_EXPIRED", out)
	}

	if out := svc.Scan(idStr, fresh, today); out.Code != CodeOK {
		t.Fatalf("scan with current token = %+v, want OK", out)
	}
}

func TestScan_LegacyTokenMode(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "joko")

	// strict off: only user and date are validated, the token value is
	// never compared
	svc, _, _ := newTestService(db, false, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))

	out := svc.Scan(fmt.Sprint(user.ID), "token-tebakan", svc.Today())
	if out.Code != CodeOK || out.Action != "Check-in" {
		t.Fatalf("legacy scan = %+v, want check-in success", out)
	}
}

func TestScan_DurationFloors(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{9*time.Hour + 30*time.Minute, "9 jam 30 menit"},
		{9*time.Hour + 30*time.Minute + 59*time.Second, "9 jam 30 menit"},
		{59 * time.Second, "0 jam 0 menit"},
		{60 * time.Second, "0 jam 1 menit"},
		{8 * time.Hour, "8 jam 0 menit"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestDo_CheckinCheckoutFlow(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "agus")

	svc, _, now := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))

	ok, msg := svc.Do(user.ID, "checkin")
	if !ok || msg != "Check-in berhasil!" {
		t.Fatalf("checkin = (%v, %q)", ok, msg)
	}

	ok, msg = svc.Do(user.ID, "checkin")
	if ok || msg != "Anda sudah check-in hari ini!" {
		t.Fatalf("second checkin = (%v, %q)", ok, msg)
	}

	*now = now.Add(8 * time.Hour)
	ok, msg = svc.Do(user.ID, "checkout")
	if !ok || msg != "Check-out berhasil!" {
		t.Fatalf("checkout = (%v, %q)", ok, msg)
	}

	ok, msg = svc.Do(user.ID, "checkout")
	if ok || msg != "Anda sudah check-out hari ini!" {
		t.Fatalf("second checkout = (%v, %q)", ok, msg)
	}

	if n := countRows(t, db, user.ID, svc.Today()); n != 1 {
		t.Errorf("attendance rows = %d, want 1", n)
	}
}

func TestDo_CheckoutRequiresCheckin(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "tono")

	svc, _, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))

	ok, msg := svc.Do(user.ID, "checkout")
	if ok || msg != "Anda harus check-in terlebih dahulu!" {
		t.Fatalf("checkout without checkin = (%v, %q)", ok, msg)
	}

	if n := countRows(t, db, user.ID, svc.Today()); n != 0 {
		t.Errorf("attendance rows = %d, want 0", n)
	}
}

func TestDo_InvalidAction(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "wati")

	svc, _, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))

	ok, msg := svc.Do(user.ID, "istirahat")
	if ok || msg != "Aksi tidak valid!" {
		t.Fatalf("invalid action = (%v, %q)", ok, msg)
	}
}

// TestScan_ConcurrentFirstCheckin drives concurrent scans at the empty
// state; the (user_id, date) unique index must keep this at one row no
// matter which request wins.
func TestScan_ConcurrentFirstCheckin(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "race")

	svc, tokens, _ := newTestService(db, true, time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
	today := svc.Today()
	tok := issue(t, tokens, user.ID, today)
	idStr := fmt.Sprint(user.ID)

	const n = 4
	outcomes := make([]Outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = svc.Scan(idStr, tok, today)
		}(i)
	}
	wg.Wait()

	if rows := countRows(t, db, user.ID, today); rows != 1 {
		t.Fatalf("attendance rows = %d, want exactly 1", rows)
	}

	checkins := 0
	for _, out := range outcomes {
		if out.Success && out.Action == "Check-in" {
			checkins++
		}
	}
	if checkins != 1 {
		t.Errorf("check-in outcomes = %d, want exactly 1", checkins)
	}
}
