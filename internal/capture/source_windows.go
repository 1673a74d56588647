//go:build windows

package capture

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dkazmin/macroplay/internal/event"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx = user32.NewProc("SetWindowsHookExW")
	procUnhookHookEx     = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx   = user32.NewProc("CallNextHookEx")
	procGetMessage       = user32.NewProc("GetMessageW")
	procPostThreadMsg    = user32.NewProc("PostThreadMessageW")
	procMapVirtualKey    = user32.NewProc("MapVirtualKeyW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E

	wheelDelta = 120

	mapvkVkToChar = 2
)

type point struct {
	x, y int32
}

type msllHookStruct struct {
	pt        point
	mouseData uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

type kbdllHookStruct struct {
	vkCode    uint32
	scanCode  uint32
	flags     uint32
	time      uint32
	extraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
}

// Low-level hook procedures cannot carry a closure, so the running source's
// handler is held in a package variable. Only one hook source may run per
// process; Run enforces that.
var (
	hookMu      sync.Mutex
	hookHandler Handler
)

var (
	mouseHookProc = windows.NewCallback(func(code int32, wParam, lParam uintptr) uintptr {
		if code >= 0 {
			hookMu.Lock()
			h := hookHandler
			hookMu.Unlock()
			if h != nil {
				info := (*msllHookStruct)(unsafe.Pointer(lParam))
				dispatchMouse(h, wParam, info)
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
		return ret
	})

	keyboardHookProc = windows.NewCallback(func(code int32, wParam, lParam uintptr) uintptr {
		if code >= 0 {
			hookMu.Lock()
			h := hookHandler
			hookMu.Unlock()
			if h != nil {
				info := (*kbdllHookStruct)(unsafe.Pointer(lParam))
				dispatchKeyboard(h, wParam, info)
			}
		}
		ret, _, _ := procCallNextHookEx.Call(0, uintptr(code), wParam, lParam)
		return ret
	})
)

func dispatchMouse(h Handler, wParam uintptr, info *msllHookStruct) {
	switch wParam {
	case wmMouseMove:
		h.PointerMove(int(info.pt.x), int(info.pt.y))
	case wmLButtonDown:
		h.PointerButton(event.ButtonLeft, true)
	case wmLButtonUp:
		h.PointerButton(event.ButtonLeft, false)
	case wmRButtonDown:
		h.PointerButton(event.ButtonRight, true)
	case wmRButtonUp:
		h.PointerButton(event.ButtonRight, false)
	case wmMButtonDown:
		h.PointerButton(event.ButtonMiddle, true)
	case wmMButtonUp:
		h.PointerButton(event.ButtonMiddle, false)
	case wmMouseWheel:
		ticks := int(int16(info.mouseData>>16)) / wheelDelta
		h.PointerScroll(0, ticks)
	case wmMouseHWheel:
		ticks := int(int16(info.mouseData>>16)) / wheelDelta
		h.PointerScroll(ticks, 0)
	}
}

func dispatchKeyboard(h Handler, wParam uintptr, info *kbdllHookStruct) {
	var pressed bool
	switch wParam {
	case wmKeyDown, wmSysKeyDown:
		pressed = true
	case wmKeyUp, wmSysKeyUp:
		pressed = false
	default:
		return
	}
	vk := int(info.vkCode)
	ch, _, _ := procMapVirtualKey.Call(uintptr(vk), mapvkVkToChar)
	// MapVirtualKey sets the high bit for dead keys.
	r := rune(uint16(ch) &^ 0x8000)
	h.Key(event.RawKey{VK: vk, Rune: r}, pressed)
}

// HookSource captures system-wide input through Windows low-level hooks.
type HookSource struct{}

// NewPlatformSource returns the platform capture source.
func NewPlatformSource() (Source, error) {
	return &HookSource{}, nil
}

// Run installs WH_MOUSE_LL and WH_KEYBOARD_LL hooks and pumps messages until
// ctx is cancelled. The hooks deliver on this thread's message loop, so the
// OS thread is locked for the duration.
func (s *HookSource) Run(ctx context.Context, h Handler) error {
	hookMu.Lock()
	if hookHandler != nil {
		hookMu.Unlock()
		return fmt.Errorf("input hooks already installed")
	}
	hookHandler = h
	hookMu.Unlock()
	defer func() {
		hookMu.Lock()
		hookHandler = nil
		hookMu.Unlock()
	}()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mouseHook, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseHookProc, 0, 0)
	if mouseHook == 0 {
		return fmt.Errorf("install mouse hook: %w", err)
	}
	defer procUnhookHookEx.Call(mouseHook)

	keyboardHook, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardHookProc, 0, 0)
	if keyboardHook == 0 {
		return fmt.Errorf("install keyboard hook: %w", err)
	}
	defer procUnhookHookEx.Call(keyboardHook)

	tid := windows.GetCurrentThreadId()
	go func() {
		<-ctx.Done()
		procPostThreadMsg.Call(uintptr(tid), wmQuit, 0, 0)
	}()

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
	}
	return ctx.Err()
}
