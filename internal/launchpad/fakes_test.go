package launchpad

import (
	"errors"
	"sync"
)

// Shared test doubles for the session, grid and panel tests.

// frameRecorder implements FrameWriter, capturing every emitted frame.
type frameRecorder struct {
	mu     sync.Mutex
	frames [][]byte
	err    error
}

func (r *frameRecorder) WriteFrame(frame []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	r.frames = append(r.frames, cp)
	return nil
}

func (r *frameRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *frameRecorder) last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// fakeInputPort implements InputPort with a controllable listener.
type fakeInputPort struct {
	name string

	mu        sync.Mutex
	open      bool
	listening bool
	onMessage func([]byte)

	openErr   error
	listenErr error
}

func newFakeInputPort(name string) *fakeInputPort {
	return &fakeInputPort{name: name}
}

func (p *fakeInputPort) Name() string { return p.name }

func (p *fakeInputPort) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return p.openErr
	}
	p.open = true
	return nil
}

func (p *fakeInputPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	p.listening = false
	p.onMessage = nil
	return nil
}

func (p *fakeInputPort) Listen(onMessage func([]byte)) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listenErr != nil {
		return nil, p.listenErr
	}
	p.listening = true
	p.onMessage = onMessage
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.listening = false
		p.onMessage = nil
	}, nil
}

// deliver injects a raw message as if the device sent it.
func (p *fakeInputPort) deliver(data []byte) {
	p.mu.Lock()
	cb := p.onMessage
	p.mu.Unlock()
	if cb != nil {
		cb(data)
	}
}

func (p *fakeInputPort) isOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// fakeOutputPort implements OutputPort, recording sent frames.
type fakeOutputPort struct {
	name string

	mu    sync.Mutex
	open  bool
	sent  [][]byte
	fail  bool
	openE error
}

func newFakeOutputPort(name string) *fakeOutputPort {
	return &fakeOutputPort{name: name}
}

func (p *fakeOutputPort) Name() string { return p.name }

func (p *fakeOutputPort) Open() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openE != nil {
		return p.openE
	}
	p.open = true
	return nil
}

func (p *fakeOutputPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

func (p *fakeOutputPort) Send(data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("port gone")
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	p.sent = append(p.sent, cp)
	return nil
}

func (p *fakeOutputPort) sentCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sent)
}

func (p *fakeOutputPort) lastSent() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sent) == 0 {
		return nil
	}
	return p.sent[len(p.sent)-1]
}

func (p *fakeOutputPort) isOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// fakeProvider implements PortProvider over mutable port lists.
type fakeProvider struct {
	mu      sync.Mutex
	inputs  []InputPort
	outputs []OutputPort
}

func (f *fakeProvider) InputPorts() []InputPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]InputPort(nil), f.inputs...)
}

func (f *fakeProvider) OutputPorts() []OutputPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]OutputPort(nil), f.outputs...)
}

func (f *fakeProvider) setPorts(in []InputPort, out []OutputPort) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = in
	f.outputs = out
}

// newDevicePorts returns a port pair named like a real device, wired into
// a provider.
func newDevicePorts() (*fakeProvider, *fakeInputPort, *fakeOutputPort) {
	in := newFakeInputPort("Launchpad X LPX MIDI In")
	out := newFakeOutputPort("Launchpad X LPX MIDI Out")
	provider := &fakeProvider{}
	provider.setPorts([]InputPort{in}, []OutputPort{out})
	return provider, in, out
}

// fakeDispatcher records every dispatched action.
type fakeDispatcher struct {
	mu       sync.Mutex
	cues     []Trigger
	navs     []NavKey
	stopAlls int
}

func (d *fakeDispatcher) DispatchCue(t Trigger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cues = append(d.cues, t)
}

func (d *fakeDispatcher) DispatchNavigation(key NavKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.navs = append(d.navs, key)
}

func (d *fakeDispatcher) DispatchStopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopAlls++
}

func (d *fakeDispatcher) cueCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cues)
}

func (d *fakeDispatcher) lastCue() (Trigger, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cues) == 0 {
		return Trigger{}, false
	}
	return d.cues[len(d.cues)-1], true
}

func (d *fakeDispatcher) navCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.navs)
}

func (d *fakeDispatcher) lastNav() (NavKey, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.navs) == 0 {
		return "", false
	}
	return d.navs[len(d.navs)-1], true
}

func (d *fakeDispatcher) stopAllCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopAlls
}
