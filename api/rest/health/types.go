package health

type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version,omitempty"`
	Deps    map[string]string `json:"deps,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}
