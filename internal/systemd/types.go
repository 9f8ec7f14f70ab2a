package systemd

// State is the normalized run state of a service
type State string

const (
	StateRunning State = "running"
	StateStopped State = "stopped"
	StateFailed  State = "failed"
	StateUnknown State = "unknown"
)

// StateFromActive maps a systemd ActiveState string to a State
func StateFromActive(active string) State {
	switch active {
	case "active", "running", "reloading", "activating":
		return StateRunning
	case "inactive", "dead", "deactivating":
		return StateStopped
	case "failed":
		return StateFailed
	default:
		return StateUnknown
	}
}

// ServiceInfo represents a systemd service
type ServiceInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	State       State  `json:"state"`
	LoadState   string `json:"load_state"`
	ActiveState string `json:"active_state"`
	SubState    string `json:"sub_state"`
	MainPID     uint32 `json:"main_pid"`
	Memory      uint64 `json:"memory"`
	Tasks       uint64 `json:"tasks"`
}

// ServiceList contains a list of services
type ServiceList struct {
	Services []ServiceInfo `json:"services"`
	Total    int           `json:"total"`
}
