package server

import (
	"context"
	"sync"

	"github.com/cornelk/hashmap"

	"github.com/commatea/hapticbridge/pkg/message"
	"github.com/commatea/hapticbridge/pkg/message/version"
	"github.com/commatea/hapticbridge/pkg/metrics"
)

// Manager owns the live device map and routes incoming client messages
// either to a single device or to the manager-level commands
// (RequestDeviceList/StopAllDevices/StartScanning/StopScanning),
// mirroring original_source's ServerDeviceManager::parse_message split
// (spec.md §4.5).
type Manager struct {
	devices *hashmap.Map[uint32, *ServerDevice]

	scanMu       sync.Mutex
	scanControl  chan scanCommand
	addedCh      chan *ServerDevice
	removedCh    chan uint32
	nextIndex    uint32
	indexMu      sync.Mutex
}

type scanCommand int

const (
	scanStart scanCommand = iota
	scanStop
)

// NewManager returns a Manager with an empty device map. scanControl has
// capacity 1: a StartScanning immediately followed by StopScanning must
// not block the client's request/response cycle (spec.md §5).
func NewManager() *Manager {
	return &Manager{
		devices:     hashmap.New[uint32, *ServerDevice](),
		scanControl: make(chan scanCommand, 1),
		addedCh:     make(chan *ServerDevice, 16),
		removedCh:   make(chan uint32, 16),
	}
}

// ScanControl returns the channel the event loop selects on for
// StartScanning/StopScanning requests.
func (m *Manager) ScanControl() <-chan scanCommand { return m.scanControl }

// Added returns the channel the event loop publishes newly registered
// devices on, so the server can emit DeviceAdded notifications.
func (m *Manager) Added() <-chan *ServerDevice { return m.addedCh }

// Removed returns the channel the event loop publishes removed device
// indices on, so the server can emit DeviceRemoved notifications.
func (m *Manager) Removed() <-chan uint32 { return m.removedCh }

// AllocateIndex returns the next device index, honoring a reserved-index
// binding when the caller supplies one (spec.md §4.5).
func (m *Manager) AllocateIndex(reserved uint32, hasReserved bool) uint32 {
	if hasReserved {
		return reserved
	}
	m.indexMu.Lock()
	defer m.indexMu.Unlock()
	for {
		if _, taken := m.devices.Get(m.nextIndex); !taken {
			idx := m.nextIndex
			m.nextIndex++
			return idx
		}
		m.nextIndex++
	}
}

// Register adds dev to the live map and publishes it on Added.
func (m *Manager) Register(dev *ServerDevice) {
	m.devices.Set(dev.Index, dev)
	metrics.DevicesRegistered.WithLabelValues(dev.ProtocolName).Inc()
	metrics.DevicesConnected.Set(float64(m.devices.Len()))
	select {
	case m.addedCh <- dev:
	default:
	}
}

// Unregister removes the device at index from the live map and
// publishes the removal on Removed.
func (m *Manager) Unregister(index uint32) {
	if dev, ok := m.devices.Get(index); ok {
		metrics.DevicesRemoved.WithLabelValues(dev.ProtocolName).Inc()
	}
	m.devices.Del(index)
	metrics.DevicesConnected.Set(float64(m.devices.Len()))
	select {
	case m.removedCh <- index:
	default:
	}
}

// DeviceAt returns the live device at index, if any.
func (m *Manager) DeviceAt(index uint32) (*ServerDevice, bool) {
	return m.devices.Get(index)
}

// DeviceList renders every live device as a DeviceList response, with
// each device's DeviceMessages narrowed to what is legal at the
// requesting client's negotiated spec version (spec.md §4.2).
func (m *Manager) DeviceList(id uint32, target version.Spec) *message.DeviceList {
	infos := make([]message.DeviceMessageInfo, 0, m.devices.Len())
	m.devices.Range(func(_ uint32, dev *ServerDevice) bool {
		infos = append(infos, dev.Info(target))
		return true
	})
	return &message.DeviceList{Id: id, Devices: infos}
}

// ParseDeviceMessage routes a device-indexed command to its device, or
// returns DeviceNotAvailable if no device is registered at that index
// (spec.md §4.5 "parse_device_message").
func (m *Manager) ParseDeviceMessage(ctx context.Context, cmd message.DeviceMessage) (message.Message, error) {
	dev, ok := m.devices.Get(cmd.GetDeviceIndex())
	if !ok {
		return nil, message.DeviceNotAvailable(cmd.GetDeviceIndex())
	}
	return dev.ParseMessage(ctx, cmd)
}

// StopAllDevices fans StopDeviceCmd out to every live device concurrently
// and waits for them all, matching original_source's
// `future::join_all` over every device's parse_message (spec.md §4.5 "§8
// scenario 4"). Individual device failures are ignored and do not
// abort the fan-out; Ok is returned once every device has been asked.
func (m *Manager) StopAllDevices(ctx context.Context) (message.Message, error) {
	var wg sync.WaitGroup
	m.devices.Range(func(index uint32, dev *ServerDevice) bool {
		wg.Add(1)
		go func(d *ServerDevice) {
			defer wg.Done()
			_, _ = d.StopAllActuators(ctx, 1)
		}(dev)
		return true
	})
	wg.Wait()
	return &message.Ok{Id: 1}, nil
}

// StartScanning asks the event loop to begin a scan, matching
// original_source's channel-send-then-immediate-Ok pattern: accepting
// the request is synchronous, the scan itself runs in the background
// and is reported via ScanningFinished (spec.md §4.5).
func (m *Manager) StartScanning() {
	select {
	case m.scanControl <- scanStart:
	default:
	}
}

// StopScanning asks the event loop to stop scanning.
func (m *Manager) StopScanning() {
	select {
	case m.scanControl <- scanStop:
	default:
	}
}
