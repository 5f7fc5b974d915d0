package gpu

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/sdfplay"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoAdapter is returned when no registered backend exposes an adapter
// matching the preference.
var ErrNoAdapter = errors.New("gpu: no suitable adapter")

// Preference narrows adapter selection. The zero value accepts any
// adapter on any linked backend.
type Preference struct {
	// Backend is a backend name such as "vulkan" or "metal"; empty means any.
	Backend string

	// Adapter is a case-insensitive substring of the adapter name.
	Adapter string
}

func (p Preference) matches(backend gputypes.Backend, info gputypes.AdapterInfo) bool {
	if p.Backend != "" && !strings.EqualFold(p.Backend, backend.String()) {
		return false
	}
	if p.Adapter != "" && !strings.Contains(strings.ToLower(info.Name), strings.ToLower(p.Adapter)) {
		return false
	}
	return true
}

// deviceRank orders adapter types: discrete first, software last.
func deviceRank(t gputypes.DeviceType) int {
	switch t {
	case gputypes.DeviceTypeDiscreteGPU:
		return 0
	case gputypes.DeviceTypeIntegratedGPU:
		return 1
	case gputypes.DeviceTypeVirtualGPU:
		return 2
	case gputypes.DeviceTypeCPU:
		return 3
	default:
		return 4
	}
}

// AdapterInfo describes one adapter on one backend.
type AdapterInfo struct {
	Backend gputypes.Backend
	gputypes.AdapterInfo
}

// backends returns the registered backends in a stable order.
func backends() []gputypes.Backend {
	list := hal.AvailableBackends()
	slices.Sort(list)
	return list
}

// Adapters lists every adapter exposed by the linked backends, best
// candidates first.
func Adapters() []AdapterInfo {
	var out []AdapterInfo
	for _, variant := range backends() {
		backend, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
		if err != nil {
			slogger().Debug("gpu: backend unavailable", "backend", variant, "err", err)
			continue
		}
		for _, a := range instance.EnumerateAdapters(nil) {
			out = append(out, AdapterInfo{Backend: variant, AdapterInfo: a.Info})
		}
		instance.Destroy()
	}
	slices.SortStableFunc(out, func(a, b AdapterInfo) int {
		return cmp.Compare(deviceRank(a.DeviceType), deviceRank(b.DeviceType))
	})
	return out
}

// Device is an opened HAL device. It implements gpucontext.DeviceProvider
// and exposes the HAL handles through HalDevice/HalQueue, the same shape
// external hosts use.
type Device struct {
	instance hal.Instance
	adapter  hal.Adapter
	device   hal.Device
	queue    hal.Queue
	backend  gputypes.Backend
	info     gputypes.AdapterInfo
}

var _ gpucontext.DeviceProvider = (*Device)(nil)

type candidate struct {
	instance hal.Instance
	backend  gputypes.Backend
	adapter  hal.ExposedAdapter
}

// OpenDevice opens the best adapter matching pref across all linked
// backends. Errors wrap ErrNoAdapter or sdfplay.ErrResourceAllocation.
func OpenDevice(pref Preference) (*Device, error) {
	var (
		instances []hal.Instance
		found     []candidate
	)
	for _, variant := range backends() {
		backend, ok := hal.GetBackend(variant)
		if !ok {
			continue
		}
		instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
		if err != nil {
			slogger().Debug("gpu: backend unavailable", "backend", variant, "err", err)
			continue
		}
		instances = append(instances, instance)
		for _, a := range instance.EnumerateAdapters(nil) {
			if pref.matches(variant, a.Info) {
				found = append(found, candidate{instance: instance, backend: variant, adapter: a})
			}
		}
	}

	release := func(keep hal.Instance) {
		for _, inst := range instances {
			if inst != keep {
				inst.Destroy()
			}
		}
	}

	if len(found) == 0 {
		release(nil)
		return nil, fmt.Errorf("%w (backend %q, adapter %q)", ErrNoAdapter, pref.Backend, pref.Adapter)
	}
	slices.SortStableFunc(found, func(a, b candidate) int {
		return cmp.Compare(deviceRank(a.adapter.Info.DeviceType), deviceRank(b.adapter.Info.DeviceType))
	})
	best := found[0]

	open, err := best.adapter.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		release(nil)
		return nil, fmt.Errorf("%w: open %s: %w", sdfplay.ErrResourceAllocation, best.adapter.Info.Name, err)
	}
	release(best.instance)

	slogger().Info("gpu: adapter selected",
		"backend", best.backend, "name", best.adapter.Info.Name,
		"type", best.adapter.Info.DeviceType, "driver", best.adapter.Info.Driver)

	return &Device{
		instance: best.instance,
		adapter:  best.adapter.Adapter,
		device:   open.Device,
		queue:    open.Queue,
		backend:  best.backend,
		info:     best.adapter.Info,
	}, nil
}

// HalDevice returns the hal.Device as any, for provider-style consumers.
func (d *Device) HalDevice() any { return d.device }

// HalQueue returns the hal.Queue as any, for provider-style consumers.
func (d *Device) HalQueue() any { return d.queue }

// Hal returns the typed HAL handles.
func (d *Device) Hal() (hal.Device, hal.Queue) { return d.device, d.queue }

// Device implements gpucontext.DeviceProvider.
func (d *Device) Device() gpucontext.Device { return d.device }

// Queue implements gpucontext.DeviceProvider.
func (d *Device) Queue() gpucontext.Queue { return d.queue }

// Adapter implements gpucontext.DeviceProvider.
func (d *Device) Adapter() gpucontext.Adapter { return d.adapter }

// SurfaceFormat implements gpucontext.DeviceProvider. A headless device
// has no surface.
func (d *Device) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// AdapterInfo implements gpucontext.DeviceProvider.
func (d *Device) AdapterInfo() gpucontext.AdapterInfo {
	t := gpucontext.AdapterTypeUnknown
	switch d.info.DeviceType {
	case gputypes.DeviceTypeDiscreteGPU:
		t = gpucontext.AdapterTypeDiscrete
	case gputypes.DeviceTypeIntegratedGPU:
		t = gpucontext.AdapterTypeIntegrated
	case gputypes.DeviceTypeCPU:
		t = gpucontext.AdapterTypeSoftware
	}
	return gpucontext.AdapterInfo{Name: d.info.Name, Type: t}
}

// Info returns the backend and adapter description.
func (d *Device) Info() AdapterInfo {
	return AdapterInfo{Backend: d.backend, AdapterInfo: d.info}
}

// Close destroys the device and its instance. Safe to call twice.
func (d *Device) Close() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
		d.queue = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// DeviceFromProvider extracts HAL handles from an external host. The
// provider must implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func DeviceFromProvider(provider gpucontext.DeviceProvider) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, fmt.Errorf("gpu: provider %T does not expose HAL types", provider)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, errors.New("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, errors.New("gpu: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}
