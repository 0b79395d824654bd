package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/dmitrijs2005/jotkeeper/internal/logging"
)

// Compile-time interface check.
var _ Provider = (*WebRTCProvider)(nil)

const (
	// dataChannelLabel is the single ordered, reliable channel each peer
	// pair shares for sync traffic.
	dataChannelLabel = "sync"

	offerPollInterval  = 2 * time.Second
	answerPollInterval = 500 * time.Millisecond
	answerTimeout      = 30 * time.Second
	iceGatherTimeout   = 15 * time.Second
)

// Authorize reports whether an inbound connection attempt from the given
// device id should be accepted. Only already-paired devices pass; everyone
// else is rejected before any channel opens.
type Authorize func(peerID string) bool

// WebRTCProvider implements Provider over pion data channels. Signaling
// uses vanilla ICE: all candidates are gathered before the SDP is
// published, so one offer/answer round-trip through the signaler is enough.
type WebRTCProvider struct {
	self      string
	signaler  Signaler
	authorize Authorize
	log       logging.Logger

	iceServers []webrtc.ICEServer

	mu    sync.Mutex
	peers map[string]*peerConn

	inbound chan Inbound

	closed    chan struct{}
	closeOnce sync.Once
}

// peerConn tracks the connection to one remote device. Fields are guarded
// by WebRTCProvider.mu except the channels, which are closed exactly once
// by the pion callbacks.
type peerConn struct {
	pc     *webrtc.PeerConnection
	dc     *webrtc.DataChannel
	opened chan struct{} // closed when the data channel is usable
}

func NewWebRTCProvider(self string, signaler Signaler, authorize Authorize, iceServers []webrtc.ICEServer, log logging.Logger) *WebRTCProvider {
	return &WebRTCProvider{
		self:       self,
		signaler:   signaler,
		authorize:  authorize,
		log:        log,
		iceServers: iceServers,
		peers:      make(map[string]*peerConn),
		inbound:    make(chan Inbound, 64),
		closed:     make(chan struct{}),
	}
}

// Start launches the background poller that answers inbound offers.
func (p *WebRTCProvider) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(offerPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.closed:
				return
			case <-ticker.C:
				p.processInboundOffers(ctx)
			}
		}
	}()
}

func (p *WebRTCProvider) Available() bool { return true }

func (p *WebRTCProvider) Inbound() <-chan Inbound { return p.inbound }

// Channel returns the open data channel to peerID. A connection that is
// still signaling or whose channel has not opened yet is a miss: selection
// must be a synchronous snapshot, never a wait.
func (p *WebRTCProvider) Channel(peerID string) (Channel, bool) {
	p.mu.Lock()
	peer, ok := p.peers[peerID]
	var dc *webrtc.DataChannel
	if ok {
		dc = peer.dc
	}
	p.mu.Unlock()
	if !ok || dc == nil {
		return nil, false
	}
	select {
	case <-peer.opened:
	default:
		return nil, false
	}
	if dc.ReadyState() != webrtc.DataChannelStateOpen {
		return nil, false
	}
	return dataChannel{dc: dc}, true
}

// Connect dials peerID: publishes an SDP offer through the signaler and
// waits for the answer. Returns once the remote description is set; the
// channel becomes visible through Channel() when it actually opens.
func (p *WebRTCProvider) Connect(ctx context.Context, peerID string) error {
	p.mu.Lock()
	if existing, ok := p.peers[peerID]; ok {
		state := existing.pc.ICEConnectionState()
		if state != webrtc.ICEConnectionStateFailed && state != webrtc.ICEConnectionStateClosed {
			p.mu.Unlock()
			return nil
		}
		existing.pc.Close()
		delete(p.peers, peerID)
	}

	pc, err := p.newPeerConnection()
	if err != nil {
		p.mu.Unlock()
		return fmt.Errorf("creating peer connection: %w", err)
	}

	peer := &peerConn{pc: pc, opened: make(chan struct{})}
	p.peers[peerID] = peer
	p.mu.Unlock()

	if err := p.dial(ctx, peerID, peer); err != nil {
		p.mu.Lock()
		if current, ok := p.peers[peerID]; ok && current == peer {
			delete(p.peers, peerID)
		}
		p.mu.Unlock()
		pc.Close()
		return err
	}
	return nil
}

func (p *WebRTCProvider) dial(ctx context.Context, peerID string, peer *peerConn) error {
	ordered := true
	dc, err := peer.pc.CreateDataChannel(dataChannelLabel, &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return fmt.Errorf("creating data channel: %w", err)
	}
	// The peer is already visible in p.peers, so Channel may be reading
	// it concurrently.
	p.mu.Lock()
	peer.dc = dc
	p.mu.Unlock()
	p.wireDataChannel(peerID, peer, dc)

	offer, err := peer.pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("creating offer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(peer.pc)
	if err := peer.pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("setting local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-time.After(iceGatherTimeout):
		return fmt.Errorf("ICE gathering timed out after %s", iceGatherTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	sdp := peer.pc.LocalDescription().SDP
	if err := p.signaler.PublishOffer(ctx, p.self, peerID, sdp); err != nil {
		return fmt.Errorf("publishing offer: %w", err)
	}

	answer, err := p.waitForAnswer(ctx, peerID)
	if err != nil {
		return fmt.Errorf("waiting for answer from %s: %w", peerID, err)
	}

	if err := peer.pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return fmt.Errorf("setting remote description: %w", err)
	}

	p.log.Info(ctx, "direct channel dialed", "peer", peerID)
	return nil
}

func (p *WebRTCProvider) waitForAnswer(ctx context.Context, peerID string) (string, error) {
	deadline := time.After(answerTimeout)
	ticker := time.NewTicker(answerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return "", fmt.Errorf("timed out after %s", answerTimeout)
		case <-ctx.Done():
			return "", ctx.Err()
		case <-p.closed:
			return "", fmt.Errorf("provider closed")
		case <-ticker.C:
			answers, err := p.signaler.PollAnswers(ctx, p.self)
			if err != nil {
				p.log.Warn(ctx, "polling answers failed", "error", err)
				continue
			}
			for _, a := range answers {
				if a.From == peerID {
					return a.SDP, nil
				}
			}
		}
	}
}

func (p *WebRTCProvider) processInboundOffers(ctx context.Context) {
	offers, err := p.signaler.PollOffers(ctx, p.self)
	if err != nil {
		p.log.Warn(ctx, "polling offers failed", "error", err)
		return
	}

	for _, offer := range offers {
		// Trust boundary: only paired devices may connect. Rejected
		// offers get no answer at all.
		if !p.authorize(offer.From) {
			p.log.Warn(ctx, "rejecting connection from unpaired device", "peer", offer.From)
			continue
		}
		if err := p.answerOffer(ctx, offer); err != nil {
			p.log.Error(ctx, "answering offer failed", "peer", offer.From, "error", err)
		}
	}
}

func (p *WebRTCProvider) answerOffer(ctx context.Context, offer SignalMessage) error {
	pc, err := p.newPeerConnection()
	if err != nil {
		return fmt.Errorf("creating peer connection: %w", err)
	}

	peer := &peerConn{pc: pc, opened: make(chan struct{})}

	// The dialer owns channel creation; we adopt whatever it opens.
	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		p.mu.Lock()
		peer.dc = dc
		p.mu.Unlock()
		p.wireDataChannel(offer.From, peer, dc)
	})

	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeOffer,
		SDP:  offer.SDP,
	}); err != nil {
		pc.Close()
		return fmt.Errorf("setting remote description: %w", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		return fmt.Errorf("creating answer: %w", err)
	}

	gatherComplete := webrtc.GatheringCompletePromise(pc)
	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		return fmt.Errorf("setting local description: %w", err)
	}

	select {
	case <-gatherComplete:
	case <-time.After(iceGatherTimeout):
		pc.Close()
		return fmt.Errorf("ICE gathering timed out after %s", iceGatherTimeout)
	case <-ctx.Done():
		pc.Close()
		return ctx.Err()
	}

	sdp := pc.LocalDescription().SDP
	if err := p.signaler.PublishAnswer(ctx, p.self, offer.From, sdp); err != nil {
		pc.Close()
		return fmt.Errorf("publishing answer: %w", err)
	}

	p.mu.Lock()
	if existing, ok := p.peers[offer.From]; ok {
		existing.pc.Close()
	}
	p.peers[offer.From] = peer
	p.mu.Unlock()

	p.log.Info(ctx, "direct channel answered", "peer", offer.From)
	return nil
}

// wireDataChannel hooks open/message/close handling for a channel in either
// direction.
func (p *WebRTCProvider) wireDataChannel(peerID string, peer *peerConn, dc *webrtc.DataChannel) {
	dc.OnOpen(func() {
		select {
		case <-peer.opened:
		default:
			close(peer.opened)
		}
	})

	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		select {
		case p.inbound <- Inbound{PeerID: peerID, Payload: msg.Data}:
		case <-p.closed:
		}
	})

	dc.OnClose(func() {
		p.mu.Lock()
		if current, ok := p.peers[peerID]; ok && current == peer {
			delete(p.peers, peerID)
		}
		p.mu.Unlock()
	})
}

func (p *WebRTCProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	for peerID, peer := range p.peers {
		peer.pc.Close()
		delete(p.peers, peerID)
	}
	return nil
}

func (p *WebRTCProvider) newPeerConnection() (*webrtc.PeerConnection, error) {
	// Loopback candidates make same-machine pairs and test environments
	// work where loopback is the only interface.
	settingEngine := webrtc.SettingEngine{}
	settingEngine.SetIncludeLoopbackCandidate(true)

	api := webrtc.NewAPI(webrtc.WithSettingEngine(settingEngine))
	return api.NewPeerConnection(webrtc.Configuration{ICEServers: p.iceServers})
}

type dataChannel struct {
	dc *webrtc.DataChannel
}

func (c dataChannel) Send(payload []byte) error { return c.dc.Send(payload) }
func (c dataChannel) Close() error              { return c.dc.Close() }
