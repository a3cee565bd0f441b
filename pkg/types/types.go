package types

// Model is one entry from GET /v1/models. Adapters point at their base
// model via Parent/Root; base models leave both empty.
type Model struct {
	// Stable identifier for the model or adapter.
	// example: llama-3.1-8b-instruct
	ID string `json:"id" example:"llama-3.1-8b-instruct"`
	// Object type reported by the server, always "model".
	Object string `json:"object,omitempty"`
	// Creation time in unix seconds.
	Created int64 `json:"created,omitempty"`
	// Owner string reported by the server.
	OwnedBy string `json:"owned_by,omitempty"`
	// Base model ID when this entry is a LoRA adapter.
	Parent string `json:"parent,omitempty"`
	// Root model ID; some servers report the base here instead of parent.
	Root string `json:"root,omitempty"`
}

// IsAdapter reports whether the entry is a fine-tuned adapter rather than
// the base model itself.
func (m Model) IsAdapter() bool {
	if m.Parent != "" {
		return true
	}
	return m.Root != "" && m.Root != m.ID
}

// ModelList wraps the list of models returned by GET /v1/models.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}

// ServerStatus summarizes the managed inference container for `server status`
// and the proxy /status endpoint.
type ServerStatus struct {
	// Container name.
	// example: nim-server
	Container string `json:"container" example:"nim-server"`
	// Container state reported by docker inspect (running, exited, absent).
	// example: running
	State string `json:"state" example:"running"`
	// Container IP address on the default bridge network, if any.
	IPAddress string `json:"ip_address,omitempty"`
	// Whether /v1/health/ready currently returns 200.
	Ready bool `json:"ready"`
	// Base URL the CLI uses to reach the server.
	// example: http://localhost:8000
	BaseURL string `json:"base_url,omitempty" example:"http://localhost:8000"`
	// Models visible on the server, when it is ready.
	Models []Model `json:"models,omitempty"`
}

// Adapter describes one deployed LoRA checkpoint directory in the adapter
// volume. The checkpoint contents are opaque; only name and size are known.
type Adapter struct {
	// Directory name under the adapter source root; doubles as the model ID
	// the server exposes once its scan picks the adapter up.
	// example: llama-3.1-8b-math-lora
	Name string `json:"name" example:"llama-3.1-8b-math-lora"`
	// Total size of the checkpoint files in bytes.
	SizeBytes int64 `json:"size_bytes,omitempty"`
	// Whether the server currently lists the adapter under /v1/models.
	Loaded bool `json:"loaded"`
}
