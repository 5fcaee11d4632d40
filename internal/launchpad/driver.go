package launchpad

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DriverPorts is the production PortProvider backed by the registered
// gomidi driver (the daemon blank-imports rtmididrv). Enumeration hits
// the OS MIDI subsystem on every call, which is what lets the event
// loop's presence probe notice an unplug.
type DriverPorts struct{}

// InputPorts returns the system's MIDI input ports.
func (DriverPorts) InputPorts() []InputPort {
	ins := midi.GetInPorts()
	ports := make([]InputPort, 0, len(ins))
	for _, in := range ins {
		ports = append(ports, &driverIn{port: in})
	}
	return ports
}

// OutputPorts returns the system's MIDI output ports.
func (DriverPorts) OutputPorts() []OutputPort {
	outs := midi.GetOutPorts()
	ports := make([]OutputPort, 0, len(outs))
	for _, out := range outs {
		ports = append(ports, &driverOut{port: out})
	}
	return ports
}

// driverIn adapts a gomidi input port to the session's InputPort.
type driverIn struct {
	port drivers.In
}

func (d *driverIn) Name() string { return d.port.String() }

func (d *driverIn) Open() error { return d.port.Open() }

func (d *driverIn) Close() error { return d.port.Close() }

// Listen forwards each inbound message's raw bytes to onMessage.
func (d *driverIn) Listen(onMessage func(data []byte)) (func(), error) {
	return midi.ListenTo(d.port, func(msg midi.Message, timestampms int32) {
		onMessage([]byte(msg))
	})
}

// driverOut adapts a gomidi output port to the session's OutputPort.
type driverOut struct {
	port drivers.Out
	send func(midi.Message) error
}

func (d *driverOut) Name() string { return d.port.String() }

func (d *driverOut) Open() error {
	send, err := midi.SendTo(d.port)
	if err != nil {
		return err
	}
	d.send = send
	return nil
}

func (d *driverOut) Close() error {
	d.send = nil
	return d.port.Close()
}

// Send writes one frame. Complete SysEx frames are re-framed through
// midi.SysEx, which expects the payload without the F0/F7 wrapper.
func (d *driverOut) Send(data []byte) error {
	if d.send == nil {
		return fmt.Errorf("output %s not open", d.port.String())
	}
	if len(data) >= 2 && data[0] == sysExStart && data[len(data)-1] == sysExEnd {
		return d.send(midi.SysEx(data[1 : len(data)-1]))
	}
	return d.send(midi.Message(data))
}
