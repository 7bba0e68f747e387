package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	ps "github.com/mitchellh/go-ps"
	_ "modernc.org/sqlite"

	"github.com/julianstephens/apptbook/internal/constants"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "apptbook.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE appointments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_name TEXT NOT NULL,
		date_timestamp INTEGER NOT NULL
	)`)
	if err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec("INSERT INTO appointments (client_name, date_timestamp) VALUES ('John Doe', 1700000000000)"); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}

	return dbPath
}

func countAppointments(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM appointments").Scan(&n); err != nil {
		t.Fatalf("failed to count appointments: %v", err)
	}
	return n
}

// clock returns a fake now that advances by step on every call
func clock(start time.Time, step time.Duration) func() time.Time {
	cur := start
	return func() time.Time {
		now := cur
		cur = cur.Add(step)
		return now
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() failed: %v", err)
	}

	if filepath.Dir(backupPath) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to %s, want backups directory", backupPath)
	}
	if got := countAppointments(t, backupPath); got != 1 {
		t.Errorf("backup holds %d appointments, want 1", got)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "absent.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("CreateBackup() should fail without a database")
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = clock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local), time.Hour)

	for i := 0; i < constants.MaxBackups+3; i++ {
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup() #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}

	// Newest first, oldest three pruned
	want := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local).Add(time.Duration(constants.MaxBackups+2) * time.Hour)
	if !backups[0].Timestamp.Equal(want) {
		t.Errorf("newest backup at %v, want %v", backups[0].Timestamp, want)
	}
	oldest := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	if !backups[len(backups)-1].Timestamp.Equal(oldest) {
		t.Errorf("oldest kept backup at %v, want %v", backups[len(backups)-1].Timestamp, oldest)
	}
}

func TestListBackupsIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.GetBackupDir(), 0700); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"notes.txt", "apptbook-garbage.db", "other-20240101-1200.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("ListBackups() = %+v, want none", backups)
	}
}

func TestListBackupsNoDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "apptbook.db"))
	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups() failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		path, err := mgr.CreateBackup()
		if err != nil {
			t.Fatalf("CreateBackup() #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, _ := mgr.ListBackups()
	if len(backups) != 4 {
		t.Errorf("ListBackups() found %d backups, want 4", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	backupPath, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup() failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM appointments"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	safety, err := mgr.RestoreBackup(backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup() failed: %v", err)
	}
	if got := countAppointments(t, dbPath); got != 1 {
		t.Errorf("restored database holds %d appointments, want 1", got)
	}
	if safety == "" {
		t.Fatal("RestoreBackup() did not report a safety copy")
	}
	if got := countAppointments(t, safety); got != 0 {
		t.Errorf("safety copy holds %d appointments, want 0", got)
	}
}

func TestRestoreBackupRejectsInvalidFile(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bogus); err == nil {
		t.Error("RestoreBackup() should reject a non-database file")
	}

	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("RestoreBackup() should reject a missing file")
	}

	if got := countAppointments(t, dbPath); got != 1 {
		t.Errorf("failed restore changed the database: %d appointments", got)
	}
}

type fakeProcess struct {
	pid int
	exe string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.exe }

func TestOtherInstances(t *testing.T) {
	orig := listProcesses
	defer func() { listProcesses = orig }()

	self := os.Getpid()
	listProcesses = func() ([]ps.Process, error) {
		return []ps.Process{
			fakeProcess{pid: self, exe: "apptbook"},
			fakeProcess{pid: 101, exe: "apptbook"},
			fakeProcess{pid: 102, exe: "apptbook.exe"},
			fakeProcess{pid: 103, exe: "bash"},
		}, nil
	}

	pids, err := OtherInstances()
	if err != nil {
		t.Fatalf("OtherInstances() failed: %v", err)
	}
	if len(pids) != 2 || pids[0] != 101 || pids[1] != 102 {
		t.Errorf("OtherInstances() = %v, want [101 102]", pids)
	}

	listProcesses = func() ([]ps.Process, error) { return nil, errors.New("permission denied") }
	if _, err := OtherInstances(); err == nil {
		t.Error("OtherInstances() should surface listing errors")
	}
}
