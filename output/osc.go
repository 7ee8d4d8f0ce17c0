package output

import (
	"net"
	"strconv"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/hypebeast/go-osc/osc"

	"go-midiplayer/sequencer"
)

// DefaultOSCAddress is the OSC path sounds are sent to
const DefaultOSCAddress = "/midiplayer/note"

type oscSender interface {
	Send(packet osc.Packet) error
}

// OSC sends every sound as an OSC message
type OSC struct {
	id      string
	address string
	client  oscSender
}

// NewOSC creates a destination for target "host:port"
func NewOSC(target string) (*OSC, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return nil, fault.Wrap(err,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("parse osc target", "OSC target must be host:port"))
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return nil, fault.New("invalid osc port "+portStr,
			ftag.With(ftag.InvalidArgument),
			fmsg.WithDesc("invalid osc port", "Invalid OSC port: "+portStr))
	}
	if host == "" {
		host = "127.0.0.1"
	}
	return &OSC{
		id:      "osc:" + target,
		address: DefaultOSCAddress,
		client:  osc.NewClient(host, port),
	}, nil
}

// SetAddress changes the OSC path
func (o *OSC) SetAddress(addr string) {
	o.address = addr
}

func (o *OSC) ID() string { return o.id }

func (o *OSC) Online() bool { return o.client != nil }

func (o *OSC) Location() (sequencer.Position, bool) {
	return sequencer.Position{}, false
}

func (o *OSC) PlaySound(loc *sequencer.Position, patch string, volume, pitch float32) error {
	return o.client.Send(noteMessage(o.address, loc, patch, volume, pitch))
}

// noteMessage builds "addr patch volume pitch [world x y z]"
func noteMessage(addr string, loc *sequencer.Position, patch string, volume, pitch float32) *osc.Message {
	msg := osc.NewMessage(addr)
	msg.Append(patch)
	msg.Append(volume)
	msg.Append(pitch)
	if loc != nil {
		msg.Append(loc.World)
		msg.Append(float32(loc.X))
		msg.Append(float32(loc.Y))
		msg.Append(float32(loc.Z))
	}
	return msg
}
