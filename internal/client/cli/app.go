package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/pion/webrtc/v4"

	"github.com/dmitrijs2005/jotkeeper/internal/client/config"
	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
	"github.com/dmitrijs2005/jotkeeper/internal/client/relay"
	"github.com/dmitrijs2005/jotkeeper/internal/client/services"
	"github.com/dmitrijs2005/jotkeeper/internal/client/storage"
	"github.com/dmitrijs2005/jotkeeper/internal/client/transport"
	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

type App struct {
	config     *config.Config
	repos      *storage.Repositories
	identity   models.DeviceIdentity
	pairing    *services.PairingService
	sync       *services.SyncService
	classifier services.Classifier
	events     *services.Events
	watcher    *relay.Watcher
	provider   transport.Provider
	log        logging.Logger
	reader     *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repos, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	identitySvc := services.NewIdentityService(repos.Settings, log)
	identity, err := identitySvc.EnsureIdentity(ctx)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	var store relay.Store
	if c.RelayBucket != "" {
		store, err = relay.NewS3Store(ctx, relay.S3Config{
			Bucket:    c.RelayBucket,
			Region:    c.RelayRegion,
			Endpoint:  c.RelayEndpoint,
			AccessKey: c.RelayAccessKey,
			SecretKey: c.RelaySecretKey,
		})
		if err != nil {
			_ = repos.Close()
			return nil, err
		}
	} else {
		// No relay configured: pairing confirmations and offline sync are
		// unavailable, direct channels still work on a local network.
		log.Warn(ctx, "no relay bucket configured, running without store-and-forward")
		store = relay.NewMemoryStore()
	}

	events := services.NewEvents(16)
	pairing := services.NewPairingService(repos.Settings, store, *identity, c.DeviceName, events, log)

	authorize := func(peerID string) bool {
		return pairing.IsPaired(context.Background(), peerID)
	}
	provider := transport.NewWebRTCProvider(
		identity.DeviceID,
		transport.NewStoreSignaler(store),
		authorize,
		[]webrtc.ICEServer{{URLs: []string{"stun:stun.l.google.com:19302"}}},
		log,
	)

	selector := transport.NewSelector(provider, store)
	syncSvc := services.NewSyncService(*identity, pairing, selector, store,
		repos.Entries, repos.Expenses, repos.ActionItems, events, log)

	app := &App{
		config:     c,
		repos:      repos,
		identity:   *identity,
		pairing:    pairing,
		sync:       syncSvc,
		classifier: services.HeuristicClassifier{},
		events:     events,
		provider:   provider,
		log:        log,
		reader:     bufio.NewReader(os.Stdin),
	}
	app.watcher = relay.NewWatcher(store, identity.DeviceID, c.PollInterval, app.handleMailbox, log)
	return app, nil
}

func (a *App) handleMailbox(ctx context.Context, raw []byte) {
	if err := a.sync.HandleEnvelope(ctx, raw); err != nil {
		a.log.Warn(ctx, "mailbox envelope dropped", "error", err)
	}
}

// consumeInbound drains direct-channel messages until ctx is cancelled.
func (a *App) consumeInbound(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case in, ok := <-a.provider.Inbound():
			if !ok {
				return
			}
			if err := a.sync.HandleDirect(ctx, in); err != nil {
				a.log.Warn(ctx, "direct message dropped", "peer", in.PeerID, "error", err)
			}
		}
	}
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		a.watcher.Stop()
		_ = a.provider.Close()
		_ = a.repos.Close()
	}()

	a.watcher.Start(ctx)
	if p, ok := a.provider.(*transport.WebRTCProvider); ok {
		p.Start(ctx)
	}
	go a.consumeInbound(ctx)
	go a.sync.ConnectPeers(ctx, a.provider)
	go a.notifyEvents(ctx)

	a.Root(ctx)
}

// notifyEvents surfaces engine events on the console without interrupting
// the prompt flow too much.
func (a *App) notifyEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events.C():
			switch ev.Type {
			case services.EventPairingConfirmed:
				printlnFn("Pairing confirmed by", ev.PeerID)
			case services.EventSnapshotMerged:
				printlnFn("Received and merged a snapshot from", ev.PeerID)
			}
		}
	}
}
