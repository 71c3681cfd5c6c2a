package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SouzaGabriel26/onde-ir/internal/domain/entity"
	"github.com/SouzaGabriel26/onde-ir/internal/domain/repository"
)

type AuditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) InsertAuditLog(ctx context.Context, e entity.AuditEntry) error {
	md, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO auth_audit_logs (user_id, email, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), $6)
	`, e.UserID, e.Email, e.Action, e.IP, e.UserAgent, md)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
