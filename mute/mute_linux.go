//go:build linux

package mute

import (
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

// PulseAudio (and PipeWire's pulse server) resolve these names to whatever
// device is currently the default, so a device switch is picked up on the
// next request.
const (
	defaultSource = "@DEFAULT_SOURCE@"
	defaultSink   = "@DEFAULT_SINK@"
)

type pulseEndpoint struct {
	client *pulse.Client
	flow   Flow
}

func openEndpoint(flow Flow) (Endpoint, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, unavailable("pulse: %v", err)
	}
	return &pulseEndpoint{client: c, flow: flow}, nil
}

func (p *pulseEndpoint) Muted() (bool, error) {
	if p.flow == Render {
		var info proto.GetSinkInfoReply
		err := p.client.RawRequest(&proto.GetSinkInfo{SinkIndex: proto.Undefined, SinkName: defaultSink}, &info)
		if err != nil {
			return false, unavailable("pulse default sink: %v", err)
		}
		return info.Mute, nil
	}

	var info proto.GetSourceInfoReply
	err := p.client.RawRequest(&proto.GetSourceInfo{SourceIndex: proto.Undefined, SourceName: defaultSource}, &info)
	if err != nil {
		return false, unavailable("pulse default source: %v", err)
	}
	return info.Mute, nil
}

func (p *pulseEndpoint) SetMute(muted bool) error {
	if p.flow == Render {
		err := p.client.RawRequest(&proto.SetSinkMute{SinkIndex: proto.Undefined, SinkName: defaultSink, Mute: muted}, nil)
		if err != nil {
			return unavailable("pulse set sink mute: %v", err)
		}
		return nil
	}

	err := p.client.RawRequest(&proto.SetSourceMute{SourceIndex: proto.Undefined, SourceName: defaultSource, Mute: muted}, nil)
	if err != nil {
		return unavailable("pulse set source mute: %v", err)
	}
	return nil
}

func (p *pulseEndpoint) Close() {
	p.client.Close()
}
