package httpapi

// envelope is the body of every API response. Data is omitted when the
// interface is nil (delete acknowledgements), but an empty result set
// still serializes as "data":[] because the slice itself is non-nil.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(data any) envelope {
	return envelope{Success: true, Data: data}
}

func fail(msg string) envelope {
	return envelope{Success: false, Error: msg}
}

// health is the root probe body. Database is the configured logical
// database name, reported so operators can tell instances apart; the
// probe does not ping the store.
type health struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}
