package systemd

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Manager provides a read-only inventory of systemd services. With a
// non-empty allowlist, only listed services are returned.
type Manager struct {
	allowedServices map[string]bool
}

// NewManager creates a new systemd manager
func NewManager(allowedServices []string) *Manager {
	allowed := make(map[string]bool)
	for _, s := range allowedServices {
		allowed[s] = true
	}
	return &Manager{
		allowedServices: allowed,
	}
}

// IsAllowed checks if a service is in the allowed list
func (m *Manager) IsAllowed(name string) bool {
	name = strings.TrimSuffix(name, ".service")
	return m.allowedServices[name]
}

// List returns all systemd services visible through the allowlist
func (m *Manager) List(ctx context.Context) (*ServiceList, error) {
	conn, err := dbus.NewWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	units, err := conn.ListUnitsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	var services []ServiceInfo
	for _, unit := range units {
		if !strings.HasSuffix(unit.Name, ".service") {
			continue
		}

		name := strings.TrimSuffix(unit.Name, ".service")
		if len(m.allowedServices) > 0 && !m.allowedServices[name] {
			continue
		}

		info := ServiceInfo{
			Name:        name,
			Description: unit.Description,
			State:       StateFromActive(unit.ActiveState),
			LoadState:   unit.LoadState,
			ActiveState: unit.ActiveState,
			SubState:    unit.SubState,
		}

		// Resource properties are best effort
		if props, err := conn.GetUnitPropertiesContext(ctx, unit.Name); err == nil {
			if pid, ok := props["MainPID"].(uint32); ok {
				info.MainPID = pid
			}
			if mem, ok := props["MemoryCurrent"].(uint64); ok {
				info.Memory = mem
			}
			if tasks, ok := props["TasksCurrent"].(uint64); ok {
				info.Tasks = tasks
			}
		}

		services = append(services, info)
	}

	return &ServiceList{
		Services: services,
		Total:    len(services),
	}, nil
}

// Get returns information about a specific service
func (m *Manager) Get(ctx context.Context, name string) (*ServiceInfo, error) {
	if !m.IsAllowed(name) {
		return nil, fmt.Errorf("service '%s' is not in allowed list", name)
	}

	conn, err := dbus.NewWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	defer conn.Close()

	unitName := name
	if !strings.HasSuffix(unitName, ".service") {
		unitName = name + ".service"
	}

	props, err := conn.GetUnitPropertiesContext(ctx, unitName)
	if err != nil {
		return nil, fmt.Errorf("failed to get service properties: %w", err)
	}

	info := &ServiceInfo{
		Name: strings.TrimSuffix(name, ".service"),
	}

	if desc, ok := props["Description"].(string); ok {
		info.Description = desc
	}
	if loadState, ok := props["LoadState"].(string); ok {
		info.LoadState = loadState
	}
	if activeState, ok := props["ActiveState"].(string); ok {
		info.ActiveState = activeState
		info.State = StateFromActive(activeState)
	}
	if subState, ok := props["SubState"].(string); ok {
		info.SubState = subState
	}
	if pid, ok := props["MainPID"].(uint32); ok {
		info.MainPID = pid
	}
	if mem, ok := props["MemoryCurrent"].(uint64); ok {
		info.Memory = mem
	}
	if tasks, ok := props["TasksCurrent"].(uint64); ok {
		info.Tasks = tasks
	}

	return info, nil
}
