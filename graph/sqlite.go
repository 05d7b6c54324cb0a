package graph

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite"
)

// SQLiteStoreConfig specifies persistent store behavior.
type SQLiteStoreConfig struct {
	// EnforceRefs rejects transactions containing dangling references.
	EnforceRefs bool
}

// SQLiteStore persists committed graphs as datom rows in a SQLite file.
// Entity attribute values are msgpack-encoded; references are stored as
// plain integer columns so the graph can be joined with SQL directly.
type SQLiteStore struct {
	db     *sql.DB
	specs  []AttrSpec
	config SQLiteStoreConfig

	mu     sync.Mutex
	closed bool
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS attrspec (
	name    TEXT PRIMARY KEY,
	vtype   INTEGER NOT NULL,
	card    INTEGER NOT NULL,
	uniq    INTEGER NOT NULL,
	indexed INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS entity (
	id   INTEGER PRIMARY KEY,
	kind INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS datom (
	e    INTEGER NOT NULL,
	a    TEXT    NOT NULL,
	v    BLOB,
	r    INTEGER,
	many INTEGER NOT NULL DEFAULT 0,
	seq  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS datom_ea ON datom (e, a);
CREATE INDEX IF NOT EXISTS datom_a  ON datom (a);
`

// OpenSQLite opens (creating if needed) a SQLite-backed store at path and
// records the attribute constraint set. Use ":memory:" for a throwaway store.
func OpenSQLite(path string, specs []AttrSpec, config SQLiteStoreConfig) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("graph: open sqlite: %w", err)
	}
	// One connection: ":memory:" databases are per-connection, and the file
	// store serializes writes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("graph: init sqlite schema: %w", err)
	}
	s := &SQLiteStore{db: db, specs: specs, config: config}
	if err := s.writeSpecs(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) writeSpecs() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin: %w", err)
	}
	defer tx.Rollback()
	for _, spec := range s.specs {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO attrspec (name, vtype, card, uniq, indexed) VALUES (?, ?, ?, ?, ?)`,
			spec.Name, int(spec.Type), int(spec.Cardinality), boolInt(spec.Unique), boolInt(spec.Indexed),
		)
		if err != nil {
			return fmt.Errorf("graph: write attrspec %s: %w", spec.Name, err)
		}
	}
	return tx.Commit()
}

// Transact commits the entity list, replacing any previously committed
// graph, and returns a handle over the new graph. The write is one SQL
// transaction: on any failure nothing is committed.
func (s *SQLiteStore) Transact(entities []Entity) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	h, err := assemble(s.specs, entities, s.config.EnforceRefs)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("graph: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM datom`); err != nil {
		return nil, fmt.Errorf("graph: clear datoms: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM entity`); err != nil {
		return nil, fmt.Errorf("graph: clear entities: %w", err)
	}

	for _, e := range h.entities {
		if _, err := tx.Exec(`INSERT INTO entity (id, kind) VALUES (?, ?)`, int64(e.ID), int(e.Kind)); err != nil {
			return nil, fmt.Errorf("graph: insert entity %d: %w", e.ID, err)
		}
		for _, key := range sortedKeys(e.Attrs) {
			if err := insertDatoms(tx, e.ID, key, e.Attrs[key]); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("graph: commit: %w", err)
	}
	return h, nil
}

func insertDatoms(tx *sql.Tx, e Ident, attr string, v any) error {
	switch rv := v.(type) {
	case Ident:
		_, err := tx.Exec(`INSERT INTO datom (e, a, r) VALUES (?, ?, ?)`, int64(e), attr, int64(rv))
		if err != nil {
			return fmt.Errorf("graph: insert datom %d %s: %w", e, attr, err)
		}
	case []Ident:
		for i, ref := range rv {
			_, err := tx.Exec(`INSERT INTO datom (e, a, r, many, seq) VALUES (?, ?, ?, 1, ?)`,
				int64(e), attr, int64(ref), i)
			if err != nil {
				return fmt.Errorf("graph: insert datom %d %s: %w", e, attr, err)
			}
		}
	default:
		blob, err := msgpack.Marshal(v)
		if err != nil {
			return fmt.Errorf("graph: encode %s value: %w", attr, err)
		}
		if _, err := tx.Exec(`INSERT INTO datom (e, a, v) VALUES (?, ?, ?)`, int64(e), attr, blob); err != nil {
			return fmt.Errorf("graph: insert datom %d %s: %w", e, attr, err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// OpenHandle reads a previously committed graph back from a SQLite file
// and returns a handle over it, without opening the file for writing.
func OpenHandle(path string) (*Handle, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("graph: open sqlite: %w", err)
	}
	defer db.Close()

	specs, err := readSpecs(db)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT id, kind FROM entity ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("graph: read entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	index := make(map[Ident]int)
	for rows.Next() {
		var id int64
		var kind int
		if err := rows.Scan(&id, &kind); err != nil {
			return nil, fmt.Errorf("graph: scan entity: %w", err)
		}
		index[Ident(id)] = len(entities)
		entities = append(entities, Entity{ID: Ident(id), Kind: Kind(kind), Attrs: make(map[string]any)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("graph: read entities: %w", err)
	}

	drows, err := db.Query(`SELECT e, a, v, r, many FROM datom ORDER BY e, a, seq`)
	if err != nil {
		return nil, fmt.Errorf("graph: read datoms: %w", err)
	}
	defer drows.Close()

	for drows.Next() {
		var e int64
		var attr string
		var blob []byte
		var ref sql.NullInt64
		var many int
		if err := drows.Scan(&e, &attr, &blob, &ref, &many); err != nil {
			return nil, fmt.Errorf("graph: scan datom: %w", err)
		}
		i, ok := index[Ident(e)]
		if !ok {
			continue
		}
		attrs := entities[i].Attrs
		switch {
		case ref.Valid && many != 0:
			ids, _ := attrs[attr].([]Ident)
			attrs[attr] = append(ids, Ident(ref.Int64))
		case ref.Valid:
			attrs[attr] = Ident(ref.Int64)
		default:
			v, err := decodeValue(blob)
			if err != nil {
				return nil, fmt.Errorf("graph: decode %s value: %w", attr, err)
			}
			attrs[attr] = v
		}
	}
	if err := drows.Err(); err != nil {
		return nil, fmt.Errorf("graph: read datoms: %w", err)
	}

	return newHandle(specs, entities), nil
}

func readSpecs(db *sql.DB) ([]AttrSpec, error) {
	rows, err := db.Query(`SELECT name, vtype, card, uniq, indexed FROM attrspec ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("graph: read attrspecs: %w", err)
	}
	defer rows.Close()

	var specs []AttrSpec
	for rows.Next() {
		var s AttrSpec
		var vtype, card, uniq, indexed int
		if err := rows.Scan(&s.Name, &vtype, &card, &uniq, &indexed); err != nil {
			return nil, fmt.Errorf("graph: scan attrspec: %w", err)
		}
		s.Type = ValueType(vtype)
		s.Cardinality = Cardinality(card)
		s.Unique = uniq != 0
		s.Indexed = indexed != 0
		specs = append(specs, s)
	}
	return specs, rows.Err()
}

// decodeValue unpacks a msgpack scalar and normalizes its numeric type.
func decodeValue(blob []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(blob, &v); err != nil {
		return nil, err
	}
	return normalizeScalar(v), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
