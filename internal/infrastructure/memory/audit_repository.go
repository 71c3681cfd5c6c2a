package memory

import (
	"context"
	"sync"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
)

type AuditRepository struct {
	mu      sync.Mutex
	entries []entity.AuditEntry
}

func NewAuditRepository() *AuditRepository { return &AuditRepository{} }

func (r *AuditRepository) InsertAuditLog(_ context.Context, e entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

// Actions lists recorded actions in insertion order.
func (r *AuditRepository) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Action
	}
	return out
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
