package txn

// ResourceStore is the external collaborator the Transaction Manager
// mutates and undoes against. It performs raw insert/select/update/delete
// keyed by primary key with no
// transactional semantics of its own — the Transaction Manager is solely
// responsible for atomicity and isolation. Implemented by pkg/store.
type ResourceStore interface {
	// SelectByKey returns a row and true, or (nil, false, nil) if the key
	// does not exist.
	SelectByKey(db, table, key string) (map[string]any, bool, error)
	// SelectAll enumerates every row currently in the table.
	SelectAll(db, table string) ([]map[string]any, error)
	// Insert assigns a primary key if row does not carry one and returns
	// it; fails if the supplied key collides with an existing row.
	Insert(db, table string, row map[string]any) (string, error)
	// Update applies patch to the row at key; returns whether a row
	// matched.
	Update(db, table, key string, patch map[string]any) (bool, error)
	// Delete removes the row at key; returns whether a row matched.
	Delete(db, table, key string) (bool, error)
}
