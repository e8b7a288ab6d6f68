package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roomledger/roomledger/internal/auth"
	"github.com/roomledger/roomledger/internal/models"
	"github.com/roomledger/roomledger/internal/storage/sqlite"
)

// recordingMailer captures outgoing mail so tests can fish tokens out of the
// links instead of standing up a real relay.
type recordingMailer struct {
	mu   sync.Mutex
	sent []recordedMail
}

type recordedMail struct {
	To      string
	Subject string
	Body    string
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recordedMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) last(t *testing.T) recordedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	return m.sent[len(m.sent)-1]
}

// lastToken extracts the token query parameter from the link in the most
// recent mail.
func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	body := m.last(t).Body
	idx := strings.Index(body, "token=")
	if idx < 0 {
		t.Fatalf("no token link in mail body: %q", body)
	}
	token := body[idx+len("token="):]
	if end := strings.IndexAny(token, "\n \t"); end >= 0 {
		token = token[:end]
	}
	return token
}

type testEnv struct {
	store   *sqlite.SQLiteStore
	mailer  *recordingMailer
	jwt     *auth.JWTManager
	auth    *AuthService
	rooms   *RoomService
	entries *EntryService
	ledger  *LedgerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "roomledger-service-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mailer := &recordingMailer{}
	jwtManager := auth.NewJWTManager("test-secret-key-for-service-tests", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	tokens := auth.NewTokenIssuer(store, time.Hour)

	return &testEnv{
		store:   store,
		mailer:  mailer,
		jwt:     jwtManager,
		auth:    NewAuthService(authenticator, jwtManager, tokens, store, mailer, "http://localhost:8080"),
		rooms:   NewRoomService(store, jwtManager),
		entries: NewEntryService(store),
		ledger:  NewLedgerService(store),
	}
}

// seedRoomWithUsers creates verified users with the given IDs and puts them
// all in one room, bypassing the registration flow.
func (e *testEnv) seedRoomWithUsers(t *testing.T, userIDs ...string) *models.Room {
	t.Helper()
	ctx := context.Background()

	room := &models.Room{Name: "Test Flat", Code: "TESTCODE", CreatedBy: userIDs[0]}
	if err := e.store.CreateRoom(ctx, room); err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	for _, id := range userIDs {
		u := models.NewUser(id+"@example.com", id, "hash")
		u.ID = id
		u.Verified = true
		if err := e.store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s) failed: %v", id, err)
		}
		if err := e.store.AddRoomMember(ctx, room.ID, id); err != nil {
			t.Fatalf("AddRoomMember(%s) failed: %v", id, err)
		}
		if err := e.store.SetUserRoom(ctx, id, room.ID); err != nil {
			t.Fatalf("SetUserRoom(%s) failed: %v", id, err)
		}
	}
	return room
}

// row fetches one user's ledger row for a counterpart, failing the test if
// the ledger cannot be read. A missing row reads as all zeros.
func (e *testEnv) row(t *testing.T, roomID, userID, otherID string) models.BalanceRow {
	t.Helper()
	led, err := e.ledger.GetLedger(context.Background(), roomID, userID)
	if err != nil {
		t.Fatalf("GetLedger(%s) failed: %v", userID, err)
	}
	if r := led.Row(otherID); r != nil {
		return *r
	}
	return models.BalanceRow{UserID: otherID}
}

// assertSymmetry checks the mirrored-view invariant for a pair: what one
// user sees as payable, the counterpart sees as receivable, and vice versa.
func (e *testEnv) assertSymmetry(t *testing.T, roomID, a, b string) {
	t.Helper()
	ra := e.row(t, roomID, a, b)
	rb := e.row(t, roomID, b, a)
	if ra.Payable != rb.Receivable {
		t.Errorf("symmetry broken: %s payable to %s = %d, %s receivable from %s = %d",
			a, b, ra.Payable, b, a, rb.Receivable)
	}
	if ra.Receivable != rb.Payable {
		t.Errorf("symmetry broken: %s receivable from %s = %d, %s payable to %s = %d",
			a, b, ra.Receivable, b, a, rb.Payable)
	}
}
