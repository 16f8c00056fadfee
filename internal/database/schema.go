package database

import (
	"context"

	"github.com/surrealdb/surrealdb.go"
)

// schema holds the definitions the stores rely on. Tables stay schemaless;
// only the indexes that enforce invariants or back lookups are declared.
var schema = []string{
	"DEFINE TABLE IF NOT EXISTS user SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS user_email ON TABLE user COLUMNS email UNIQUE",
	"DEFINE TABLE IF NOT EXISTS conversation SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS conversation_users ON TABLE conversation COLUMNS userIds",
	"DEFINE TABLE IF NOT EXISTS message SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS message_conversation ON TABLE message COLUMNS conversationId",
}

func applySchema(ctx context.Context, db *surrealdb.DB) error {
	for _, stmt := range schema {
		if err := Execute(ctx, db, stmt, nil); err != nil {
			return WrapError(err, "failed to apply schema")
		}
	}
	return nil
}
