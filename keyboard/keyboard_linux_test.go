//go:build linux

package keyboard

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"micmute/keys"
)

func event(typ, code uint16, value int32) []byte {
	buf := make([]byte, inputEventSize)
	binary.LittleEndian.PutUint16(buf[16:], typ)
	binary.LittleEndian.PutUint16(buf[18:], code)
	binary.LittleEndian.PutUint32(buf[20:], uint32(value))
	return buf
}

func TestDecodeEvents(t *testing.T) {
	var raw []byte
	raw = append(raw, event(evKey, uint16(keys.LeftShift), keyPress)...)
	raw = append(raw, event(0, 0, 0)...) // EV_SYN
	raw = append(raw, event(evKey, uint16(keys.M), keyPress)...)
	raw = append(raw, event(evKey, uint16(keys.M), 2)...) // autorepeat
	raw = append(raw, event(evKey, uint16(keys.M), keyRelease)...)
	raw = append(raw, 0, 1, 2) // trailing partial record

	type ev struct {
		k       keys.Key
		pressed bool
	}
	var got []ev
	decodeEvents(raw, func(k keys.Key, pressed bool) {
		got = append(got, ev{k, pressed})
	})

	want := []ev{
		{keys.LeftShift, true},
		{keys.M, true},
		{keys.M, false},
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNextKeyDownSkipsStale(t *testing.T) {
	s := New().(*evdevSource)
	s.downs <- keys.R // pressed before capture began

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.downs <- keys.M
	}()

	k, err := s.NextKeyDown(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if k != keys.M {
		t.Errorf("got %v, want M", k)
	}
}

func TestReleaseCountsAcrossDevices(t *testing.T) {
	s := New().(*evdevSource)
	s.held[keys.LeftShift] = 2

	s.mu.Lock()
	s.releaseLocked(keys.LeftShift)
	s.mu.Unlock()
	if !s.IsDown(keys.LeftShift) {
		t.Fatal("released too early while another device holds the key")
	}

	s.mu.Lock()
	s.releaseLocked(keys.LeftShift)
	s.mu.Unlock()
	if s.IsDown(keys.LeftShift) {
		t.Error("key still down after both devices released")
	}
}
