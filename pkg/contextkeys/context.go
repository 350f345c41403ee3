package contextkeys

// Custom key type to avoid collisions with other packages writing to the context.
type contextKey string

// DBContextKey is the key under which the request-scoped *gorm.DB (pool or
// transaction) is stored.
const DBContextKey = contextKey("db")
