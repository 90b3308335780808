package models

import "github.com/google/uuid"

// Postgres fills ids with gen_random_uuid(); assigning them in Go keeps sqlite
// and pre-insert references (outbox aggregate ids) working too.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
