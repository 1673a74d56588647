//go:build windows

package inject

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dkazmin/macroplay/internal/event"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procSendInput   = user32.NewProc("SendInput")
	procMapVirtualK = user32.NewProc("MapVirtualKeyW")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventfMove       = 0x0001
	mouseEventfLeftDown   = 0x0002
	mouseEventfLeftUp     = 0x0004
	mouseEventfRightDown  = 0x0008
	mouseEventfRightUp    = 0x0010
	mouseEventfMiddleDown = 0x0020
	mouseEventfMiddleUp   = 0x0040
	mouseEventfWheel      = 0x0800

	keyEventfExtended = 0x0001
	keyEventfKeyUp    = 0x0002
	keyEventfScanCode = 0x0008

	wheelDelta = 120

	mapvkVkToVsc = 0
)

// winInput mirrors the Win32 INPUT struct: a DWORD discriminant followed by
// a 32-byte union (MOUSEINPUT is the largest member on amd64).
type winInput struct {
	typ  uint32
	_    uint32
	data [32]byte
}

type mouseInput struct {
	dx        int32
	dy        int32
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

type keybdInput struct {
	vk        uint16
	scan      uint16
	flags     uint32
	time      uint32
	extraInfo uintptr
}

// SendInput is the injection port backed by the Win32 SendInput call.
type SendInput struct{}

// New returns the platform injector.
func New() (Injector, error) {
	return &SendInput{}, nil
}

func (s *SendInput) sendMouse(mi mouseInput) {
	var in winInput
	in.typ = inputMouse
	*(*mouseInput)(unsafe.Pointer(&in.data)) = mi
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

func (s *SendInput) sendKeybd(ki keybdInput) {
	var in winInput
	in.typ = inputKeyboard
	*(*keybdInput)(unsafe.Pointer(&in.data)) = ki
	procSendInput.Call(1, uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
}

func (s *SendInput) MoveRelative(dx, dy int) {
	s.sendMouse(mouseInput{dx: int32(dx), dy: int32(dy), flags: mouseEventfMove})
}

func (s *SendInput) SetButton(b event.Button, pressed bool) {
	var flags uint32
	switch b {
	case event.ButtonLeft:
		flags = mouseEventfLeftDown
		if !pressed {
			flags = mouseEventfLeftUp
		}
	case event.ButtonRight:
		flags = mouseEventfRightDown
		if !pressed {
			flags = mouseEventfRightUp
		}
	case event.ButtonMiddle:
		flags = mouseEventfMiddleDown
		if !pressed {
			flags = mouseEventfMiddleUp
		}
	default:
		return
	}
	s.sendMouse(mouseInput{flags: flags})
}

func (s *SendInput) Scroll(dx, dy int) {
	// Horizontal ticks are recorded but only vertical wheel input is
	// synthesized.
	if dy == 0 {
		return
	}
	s.sendMouse(mouseInput{mouseData: uint32(int32(dy) * wheelDelta), flags: mouseEventfWheel})
}

func (s *SendInput) SetKey(code ScanCode, pressed bool) {
	flags := uint32(keyEventfScanCode)
	if code.Extended {
		flags |= keyEventfExtended
	}
	if !pressed {
		flags |= keyEventfKeyUp
	}
	s.sendKeybd(keybdInput{scan: code.Code, flags: flags})
}

// vkToScan translates a virtual-key code to a scan code via MapVirtualKey.
func vkToScan(vk int) (uint16, error) {
	ret, _, _ := procMapVirtualK.Call(uintptr(vk), mapvkVkToVsc)
	if ret == 0 {
		return 0, &UnresolvedKeyError{Key: event.FallbackName(vk)}
	}
	return uint16(ret), nil
}
