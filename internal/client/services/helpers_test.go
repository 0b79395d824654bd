package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/client/transport"
	"github.com/dmitrijs2005/jotkeeper/internal/common"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeSettings is an in-memory settings.Repository.
type fakeSettings struct {
	mu   sync.Mutex
	data map[string][]byte

	failSet error
	// When non-empty, failSet only applies to this key.
	failKey string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{data: map[string][]byte{}}
}

func (f *fakeSettings) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeSettings) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil && (f.failKey == "" || key == f.failKey) {
		return f.failSet
	}
	f.data[key] = value
	return nil
}

func (f *fakeSettings) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

// fakeEntries is an in-memory entries.Repository.
type fakeEntries struct {
	records []models.Entry
}

func (f *fakeEntries) GetAll(ctx context.Context) ([]models.Entry, error) {
	return append([]models.Entry(nil), f.records...), nil
}

func (f *fakeEntries) ReplaceAll(ctx context.Context, records []models.Entry) error {
	f.records = append([]models.Entry(nil), records...)
	return nil
}

func (f *fakeEntries) CreateOrUpdate(ctx context.Context, e *models.Entry) error {
	for i := range f.records {
		if f.records[i].ID == e.ID {
			f.records[i] = *e
			return nil
		}
	}
	f.records = append(f.records, *e)
	return nil
}

type fakeExpenses struct {
	records []models.Expense
}

func (f *fakeExpenses) GetAll(ctx context.Context) ([]models.Expense, error) {
	return append([]models.Expense(nil), f.records...), nil
}

func (f *fakeExpenses) ReplaceAll(ctx context.Context, records []models.Expense) error {
	f.records = append([]models.Expense(nil), records...)
	return nil
}

func (f *fakeExpenses) CreateOrUpdate(ctx context.Context, e *models.Expense) error {
	for i := range f.records {
		if f.records[i].ID == e.ID {
			f.records[i] = *e
			return nil
		}
	}
	f.records = append(f.records, *e)
	return nil
}

type fakeActions struct {
	records []models.ActionItem
}

func (f *fakeActions) GetAll(ctx context.Context) ([]models.ActionItem, error) {
	return append([]models.ActionItem(nil), f.records...), nil
}

func (f *fakeActions) ReplaceAll(ctx context.Context, records []models.ActionItem) error {
	f.records = append([]models.ActionItem(nil), records...)
	return nil
}

func (f *fakeActions) CreateOrUpdate(ctx context.Context, a *models.ActionItem) error {
	for i := range f.records {
		if f.records[i].ID == a.ID {
			f.records[i] = *a
			return nil
		}
	}
	f.records = append(f.records, *a)
	return nil
}

// testEngine is one fully wired engine instance over an in-memory relay,
// with the direct channel absent so everything rides the relay.
type testEngine struct {
	identity models.DeviceIdentity
	settings *fakeSettings
	entries  *fakeEntries
	expenses *fakeExpenses
	actions  *fakeActions
	events   *Events
	pairing  *PairingService
	sync     *SyncService
}

func newTestEngine(deviceID, name string, store relay.Store) *testEngine {
	e := &testEngine{
		identity: models.DeviceIdentity{DeviceID: deviceID, LocalKey: "local-key-" + deviceID},
		settings: newFakeSettings(),
		entries:  &fakeEntries{},
		expenses: &fakeExpenses{},
		actions:  &fakeActions{},
		events:   NewEvents(16),
	}
	log := testLogger()
	e.pairing = NewPairingService(e.settings, store, e.identity, name, e.events, log)
	selector := transport.NewSelector(transport.Unavailable{}, store)
	e.sync = NewSyncService(e.identity, e.pairing, selector, store,
		e.entries, e.expenses, e.actions, e.events, log)
	return e
}

func pairingCode(t *testing.T, e *testEngine) string {
	t.Helper()
	code, err := e.pairing.GeneratePairingPayload().Encode()
	require.NoError(t, err)
	return code
}
