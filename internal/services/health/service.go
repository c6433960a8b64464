package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports process and dependency health.
type Service struct {
	DB          Pinger
	ObjectStore string
	QueueKind   string
}

// NewService constructs a health service. A nil db means in-memory repositories.
func NewService(db Pinger, objectStore, queueKind string) *Service {
	return &Service{DB: db, ObjectStore: objectStore, QueueKind: queueKind}
}

// Status is the /health payload. OK is false only when a configured database is unreachable.
type Status struct {
	OK          bool   `json:"ok"`
	Storage     string `json:"storage"`
	Database    string `json:"database"`
	ObjectStore string `json:"objectStore"`
	Queue       string `json:"queue"`
}

func (s *Service) Status(ctx context.Context) Status {
	st := Status{
		OK:          true,
		Storage:     "memory",
		Database:    "disabled",
		ObjectStore: s.ObjectStore,
		Queue:       s.QueueKind,
	}
	if s.DB == nil {
		return st
	}
	st.Storage = "postgres"
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}
