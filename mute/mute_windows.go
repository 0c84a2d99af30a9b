//go:build windows

package mute

import (
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
)

var (
	clsidMMDeviceEnumerator = ole.NewGUID("{BCDE0395-E52F-467C-8E3D-C4579291692E}")
	iidIMMDeviceEnumerator  = ole.NewGUID("{A95664D2-9614-4F35-A746-DE8DB63617E6}")
	iidIAudioEndpointVolume = ole.NewGUID("{5CDF2C82-841E-4546-9722-0CF74078229A}")
)

const (
	eRender   = 0
	eCapture  = 1
	eConsole  = 0
	clsctxAll = 0x17
)

type mmDeviceEnumeratorVtbl struct {
	ole.IUnknownVtbl
	EnumAudioEndpoints                     uintptr
	GetDefaultAudioEndpoint                uintptr
	GetDevice                              uintptr
	RegisterEndpointNotificationCallback   uintptr
	UnregisterEndpointNotificationCallback uintptr
}

type mmDeviceVtbl struct {
	ole.IUnknownVtbl
	Activate          uintptr
	OpenPropertyStore uintptr
	GetId             uintptr
	GetState          uintptr
}

type audioEndpointVolumeVtbl struct {
	ole.IUnknownVtbl
	RegisterControlChangeNotify   uintptr
	UnregisterControlChangeNotify uintptr
	GetChannelCount               uintptr
	SetMasterVolumeLevel          uintptr
	SetMasterVolumeLevelScalar    uintptr
	GetMasterVolumeLevel          uintptr
	GetMasterVolumeLevelScalar    uintptr
	SetChannelVolumeLevel         uintptr
	SetChannelVolumeLevelScalar   uintptr
	GetChannelVolumeLevel         uintptr
	GetChannelVolumeLevelScalar   uintptr
	SetMute                       uintptr
	GetMute                       uintptr
}

func vtblOf[T any](unk *ole.IUnknown) *T {
	return (*T)(unsafe.Pointer(unk.RawVTable))
}

// wasapiEndpoint owns one OS thread with COM initialized; every call is
// marshalled onto it.
type wasapiEndpoint struct {
	dataFlow uintptr
	calls    chan func()
	done     chan struct{}
	once     sync.Once
}

func openEndpoint(flow Flow) (Endpoint, error) {
	e := &wasapiEndpoint{
		dataFlow: eCapture,
		calls:    make(chan func()),
		done:     make(chan struct{}),
	}
	if flow == Render {
		e.dataFlow = eRender
	}
	ready := make(chan error, 1)
	go e.run(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return e, nil
}

func (e *wasapiEndpoint) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		ready <- unavailable("CoInitializeEx: %v", err)
		return
	}
	defer ole.CoUninitialize()
	ready <- nil

	for {
		select {
		case fn := <-e.calls:
			fn()
		case <-e.done:
			return
		}
	}
}

func (e *wasapiEndpoint) do(fn func(vol *ole.IUnknown) error) error {
	errCh := make(chan error, 1)
	call := func() { errCh <- e.withVolume(fn) }
	select {
	case e.calls <- call:
	case <-e.done:
		return unavailable("endpoint closed")
	}
	return <-errCh
}

// withVolume resolves the current default device on every call so a device
// switch in the sound settings is honored.
func (e *wasapiEndpoint) withVolume(fn func(vol *ole.IUnknown) error) error {
	enum, err := ole.CreateInstance(clsidMMDeviceEnumerator, iidIMMDeviceEnumerator)
	if err != nil {
		return unavailable("MMDeviceEnumerator: %v", err)
	}
	defer enum.Release()

	var dev *ole.IUnknown
	hr, _, _ := syscall.SyscallN(
		vtblOf[mmDeviceEnumeratorVtbl](enum).GetDefaultAudioEndpoint,
		uintptr(unsafe.Pointer(enum)),
		e.dataFlow,
		eConsole,
		uintptr(unsafe.Pointer(&dev)),
	)
	if hr != 0 || dev == nil {
		return unavailable("GetDefaultAudioEndpoint: %v", ole.NewError(hr))
	}
	defer dev.Release()

	var vol *ole.IUnknown
	hr, _, _ = syscall.SyscallN(
		vtblOf[mmDeviceVtbl](dev).Activate,
		uintptr(unsafe.Pointer(dev)),
		uintptr(unsafe.Pointer(iidIAudioEndpointVolume)),
		clsctxAll,
		0,
		uintptr(unsafe.Pointer(&vol)),
	)
	if hr != 0 || vol == nil {
		return unavailable("IAudioEndpointVolume: %v", ole.NewError(hr))
	}
	defer vol.Release()

	return fn(vol)
}

func (e *wasapiEndpoint) Muted() (bool, error) {
	var muted int32
	err := e.do(func(vol *ole.IUnknown) error {
		hr, _, _ := syscall.SyscallN(
			vtblOf[audioEndpointVolumeVtbl](vol).GetMute,
			uintptr(unsafe.Pointer(vol)),
			uintptr(unsafe.Pointer(&muted)),
		)
		if hr != 0 {
			return unavailable("GetMute: %v", ole.NewError(hr))
		}
		return nil
	})
	return muted != 0, err
}

func (e *wasapiEndpoint) SetMute(muted bool) error {
	var flag uintptr
	if muted {
		flag = 1
	}
	return e.do(func(vol *ole.IUnknown) error {
		hr, _, _ := syscall.SyscallN(
			vtblOf[audioEndpointVolumeVtbl](vol).SetMute,
			uintptr(unsafe.Pointer(vol)),
			flag,
			0,
		)
		if hr != 0 {
			return unavailable("SetMute: %v", ole.NewError(hr))
		}
		return nil
	})
}

func (e *wasapiEndpoint) Close() {
	e.once.Do(func() { close(e.done) })
}
