//go:build windows

package selward

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

// windowsObserver captures selections through UI Automation: a dedicated
// locked OS thread initialises a multi-threaded COM apartment, instantiates
// the CUIAutomation engine and registers a text-selection-changed automation
// event handler scoped to the whole desktop subtree. UIA delivers events on
// its own threads; the handler reads the sender element's text-pattern
// selection and hands it to the capture state. The automation pointer is
// only ever touched from the owning thread.
type windowsObserver struct {
	mu      sync.Mutex
	st      *captureState
	quit    chan struct{}
	handler *selectionEventHandler // pinned while registered with UIA
}

func newObserver() observer { return &windowsObserver{} }

func (o *windowsObserver) name() string { return "Windows UI Automation" }

var (
	clsidCUIAutomation           = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation             = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")
	iidIUIAutomationEventHandler = ole.NewGUID("{146C3C17-F12E-4E22-8C27-F894B9B79C69}")
	iidIUIAutomationTextPattern  = ole.NewGUID("{32EBA289-3583-42C9-9C59-3B6D9A1E9B6A}")
)

const (
	uiaTextSelectionChangedEventID = 20014 // UIA_Text_TextSelectionChangedEventId
	uiaTextPatternID               = 10014 // UIA_TextPatternId
	treeScopeSubtree               = 7     // element | children | descendants
)

// IUIAutomation vtable slots (after the three IUnknown methods).
const (
	autoGetRootElement     = 5
	autoAddEventHandler    = 32 // AddAutomationEventHandler
	autoRemoveEventHandler = 33 // RemoveAutomationEventHandler
)

// Slots on the element/pattern interfaces the capture path walks.
const (
	elemGetCurrentPattern = 16 // IUIAutomationElement::GetCurrentPattern
	textGetSelection      = 5  // IUIAutomationTextPattern::GetSelection
	rangeArrayLength      = 3  // IUIAutomationTextRangeArray::get_Length
	rangeArrayGetElement  = 4  // IUIAutomationTextRangeArray::GetElement
	rangeGetText          = 12 // IUIAutomationTextRange::GetText
)

var (
	oleaut32          = windows.NewLazySystemDLL("oleaut32.dll")
	procSysFreeString = oleaut32.NewProc("SysFreeString")
)

// comCall invokes a raw COM vtable slot on obj.
func comCall(obj *ole.IUnknown, slot int, args ...uintptr) uintptr {
	vt := (*[64]uintptr)(unsafe.Pointer(obj.RawVTable))
	all := append([]uintptr{uintptr(unsafe.Pointer(obj))}, args...)
	hr, _, _ := syscall.SyscallN(vt[slot], all...)
	return hr
}

func (o *windowsObserver) start(st *captureState) error {
	o.st = st
	quit := make(chan struct{})
	ready := make(chan error, 1)
	go o.run(quit, ready)
	if err := <-ready; err != nil {
		return initErr("start", err)
	}
	o.mu.Lock()
	o.quit = quit
	o.mu.Unlock()
	return nil
}

func (o *windowsObserver) stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.quit != nil {
		close(o.quit)
		o.quit = nil
	}
	return nil
}

// run owns the COM apartment and the automation engine for the lifetime of
// one start/stop cycle.
func (o *windowsObserver) run(quit chan struct{}, ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		ready <- fmt.Errorf("com init: %w", err)
		return
	}
	defer ole.CoUninitialize()

	auto, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		ready <- fmt.Errorf("uiautomation engine: %w", err)
		return
	}
	defer auto.Release()

	var root *ole.IUnknown
	if hr := comCall(auto, autoGetRootElement, uintptr(unsafe.Pointer(&root))); hr != 0 || root == nil {
		ready <- fmt.Errorf("uiautomation root element: hresult 0x%08x", hr)
		return
	}
	defer root.Release()

	h := newSelectionEventHandler(o)
	o.handler = h
	hr := comCall(auto, autoAddEventHandler,
		uintptr(uiaTextSelectionChangedEventID),
		uintptr(unsafe.Pointer(root)),
		uintptr(treeScopeSubtree),
		0, // no cache request
		uintptr(unsafe.Pointer(h)),
	)
	if hr != 0 {
		o.handler = nil
		ready <- fmt.Errorf("event handler registration: hresult 0x%08x", hr)
		return
	}
	ready <- nil

	<-quit
	comCall(auto, autoRemoveEventHandler,
		uintptr(uiaTextSelectionChangedEventID),
		uintptr(unsafe.Pointer(root)),
		uintptr(unsafe.Pointer(h)),
	)
	o.handler = nil
	slog.Debug("uiautomation thread exited")
}

// onSelectionChanged walks sender's text pattern to the current selection.
// Any refusal along the way is skipped silently; the last captured value
// stays put.
func (o *windowsObserver) onSelectionChanged(sender *ole.IUnknown) {
	var patUnk *ole.IUnknown
	if hr := comCall(sender, elemGetCurrentPattern,
		uintptr(uiaTextPatternID), uintptr(unsafe.Pointer(&patUnk))); hr != 0 || patUnk == nil {
		return
	}
	defer patUnk.Release()

	var pat *ole.IUnknown
	if hr := comCall(patUnk, 0, // QueryInterface
		uintptr(unsafe.Pointer(iidIUIAutomationTextPattern)),
		uintptr(unsafe.Pointer(&pat))); hr != 0 || pat == nil {
		return
	}
	defer pat.Release()

	var ranges *ole.IUnknown
	if hr := comCall(pat, textGetSelection, uintptr(unsafe.Pointer(&ranges))); hr != 0 || ranges == nil {
		return
	}
	defer ranges.Release()

	var n int32
	if hr := comCall(ranges, rangeArrayLength, uintptr(unsafe.Pointer(&n))); hr != 0 || n < 1 {
		return
	}

	var rng *ole.IUnknown
	if hr := comCall(ranges, rangeArrayGetElement, 0, uintptr(unsafe.Pointer(&rng))); hr != 0 || rng == nil {
		return
	}
	defer rng.Release()

	var bstr *uint16
	if hr := comCall(rng, rangeGetText,
		uintptr(uint32(0xffffffff)), // -1: no length limit
		uintptr(unsafe.Pointer(&bstr))); hr != 0 || bstr == nil {
		return
	}
	text := windows.UTF16PtrToString(bstr)
	procSysFreeString.Call(uintptr(unsafe.Pointer(bstr))) //nolint:errcheck

	if text != "" {
		o.st.set(text)
	}
}

// selectionEventHandler is a minimal COM server implementing
// IUIAutomationEventHandler. UIA calls it on its own threads; the only
// shared state it touches is the capture slot, through the observer.
type selectionEventHandler struct {
	vtbl *eventHandlerVtbl
	refs int32
	obs  *windowsObserver
}

type eventHandlerVtbl struct {
	queryInterface        uintptr
	addRef                uintptr
	release               uintptr
	handleAutomationEvent uintptr
}

var selectionEventHandlerVtbl = eventHandlerVtbl{
	queryInterface: syscall.NewCallback(func(this, riid, ppv uintptr) uintptr {
		iid := (*ole.GUID)(unsafe.Pointer(riid))
		out := (*uintptr)(unsafe.Pointer(ppv))
		if ole.IsEqualGUID(iid, ole.IID_IUnknown) || ole.IsEqualGUID(iid, iidIUIAutomationEventHandler) {
			h := (*selectionEventHandler)(unsafe.Pointer(this))
			atomic.AddInt32(&h.refs, 1)
			*out = this
			return 0 // S_OK
		}
		*out = 0
		return ole.E_NOINTERFACE
	}),
	addRef: syscall.NewCallback(func(this uintptr) uintptr {
		h := (*selectionEventHandler)(unsafe.Pointer(this))
		return uintptr(atomic.AddInt32(&h.refs, 1))
	}),
	release: syscall.NewCallback(func(this uintptr) uintptr {
		h := (*selectionEventHandler)(unsafe.Pointer(this))
		refs := atomic.AddInt32(&h.refs, -1)
		if refs < 0 {
			refs = 0
		}
		// Storage is Go-managed; the observer keeps the handler alive while
		// it is registered, so nothing to free here.
		return uintptr(refs)
	}),
	handleAutomationEvent: syscall.NewCallback(func(this, sender uintptr, eventID uintptr) uintptr {
		h := (*selectionEventHandler)(unsafe.Pointer(this))
		if sender != 0 && int32(eventID) == uiaTextSelectionChangedEventID {
			h.obs.onSelectionChanged((*ole.IUnknown)(unsafe.Pointer(sender)))
		}
		return 0 // S_OK
	}),
}

func newSelectionEventHandler(o *windowsObserver) *selectionEventHandler {
	return &selectionEventHandler{vtbl: &selectionEventHandlerVtbl, refs: 1, obs: o}
}
