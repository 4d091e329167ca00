// Package record provides a small persistence layer over database/sql
// driven by entity descriptors.
package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/strutkit/strut/entity"
)

// ErrNotFound is returned by Get when no row matches.
var ErrNotFound = errors.New("record: not found")

// Querier is the interface for executing queries.
// Both *sql.DB and *sql.Tx implement this interface.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// Mappable is implemented by structs that persist to a table.
type Mappable interface {
	Table() string
}

// Store persists registered entities. Column layout is derived from
// the entity descriptor of each struct, so stored types must be
// registered with the same reflector used to build the store.
type Store struct {
	db        Querier
	reflector entity.Reflector
}

// NewStore creates a Store over db using descriptors from r.
func NewStore(db Querier, r entity.Reflector) *Store {
	return &Store{db: db, reflector: r}
}

// WithTx returns a Store bound to the given transaction.
func (s *Store) WithTx(tx *sql.Tx) *Store {
	return &Store{db: tx, reflector: s.reflector}
}

// EnsureTable creates the table for m if it does not exist. Columns
// come from the entity descriptor; an "id" column of type int becomes
// the primary key.
func (s *Store) EnsureTable(ctx context.Context, m Mappable) error {
	desc, err := s.describe(m)
	if err != nil {
		return err
	}

	cols := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		def := quoteIdent(f.Name) + " " + columnType(f.Type)
		if f.Name == "id" && f.Type == "int" {
			def += " PRIMARY KEY"
		}
		cols = append(cols, def)
	}

	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(m.Table()), strings.Join(cols, ", "))

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("record: create table %s: %w", m.Table(), err)
	}
	return nil
}

// Insert stores m as a new row. Columns with zero "id" are skipped so
// autoincrement keys apply; the generated id is written back to m when
// its id field is an int.
func (s *Store) Insert(ctx context.Context, m Mappable) error {
	desc, err := s.describe(m)
	if err != nil {
		return err
	}

	rv, err := structValue(m)
	if err != nil {
		return err
	}

	var (
		cols    []string
		marks   []string
		args    []any
		idField reflect.Value
	)
	for _, f := range desc.Fields {
		fv := fieldByColumn(rv, f.Name)
		if !fv.IsValid() {
			continue
		}
		if f.Name == "id" {
			idField = fv
			if fv.IsZero() {
				continue
			}
		}
		arg, err := toArg(fv)
		if err != nil {
			return fmt.Errorf("record: %s.%s: %w", m.Table(), f.Name, err)
		}
		cols = append(cols, quoteIdent(f.Name))
		marks = append(marks, "?")
		args = append(args, arg)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(m.Table()), strings.Join(cols, ", "), strings.Join(marks, ", "))

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("record: insert %s: %w", m.Table(), err)
	}

	if idField.IsValid() && idField.IsZero() && idField.CanSet() && idField.Kind() >= reflect.Int && idField.Kind() <= reflect.Int64 {
		if id, err := res.LastInsertId(); err == nil {
			idField.SetInt(id)
		}
	}
	return nil
}

// Get loads the row with the given id into m, which must be a pointer.
func (s *Store) Get(ctx context.Context, m Mappable, id any) error {
	if reflect.ValueOf(m).Kind() != reflect.Pointer {
		return fmt.Errorf("record: get %s: destination must be a pointer", m.Table())
	}

	desc, err := s.describe(m)
	if err != nil {
		return err
	}

	stmt := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?",
		columnList(desc), quoteIdent(m.Table()))

	rows, err := s.db.QueryContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("record: get %s: %w", m.Table(), err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return fmt.Errorf("record: get %s: %w", m.Table(), err)
		}
		return ErrNotFound
	}
	rv, err := structValue(m)
	if err != nil {
		return err
	}
	return scanRow(rows, desc, rv)
}

// Update rewrites the row matching m's id with m's current values.
func (s *Store) Update(ctx context.Context, m Mappable) error {
	desc, err := s.describe(m)
	if err != nil {
		return err
	}

	rv, err := structValue(m)
	if err != nil {
		return err
	}

	var (
		sets []string
		args []any
		id   any
	)
	for _, f := range desc.Fields {
		fv := fieldByColumn(rv, f.Name)
		if !fv.IsValid() {
			continue
		}
		arg, err := toArg(fv)
		if err != nil {
			return fmt.Errorf("record: %s.%s: %w", m.Table(), f.Name, err)
		}
		if f.Name == "id" {
			id = arg
			continue
		}
		sets = append(sets, quoteIdent(f.Name)+" = ?")
		args = append(args, arg)
	}
	if id == nil {
		return fmt.Errorf("record: update %s: no id field", m.Table())
	}
	args = append(args, id)

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?",
		quoteIdent(m.Table()), strings.Join(sets, ", "))

	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("record: update %s: %w", m.Table(), err)
	}
	return nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, m Mappable, id any) error {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteIdent(m.Table()))
	if _, err := s.db.ExecContext(ctx, stmt, id); err != nil {
		return fmt.Errorf("record: delete %s: %w", m.Table(), err)
	}
	return nil
}

// Select loads rows into dest, which must be a pointer to a slice of
// the entity struct. The optional where clause (without the WHERE
// keyword) filters rows.
func (s *Store) Select(ctx context.Context, m Mappable, dest any, where string, args ...any) error {
	desc, err := s.describe(m)
	if err != nil {
		return err
	}

	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.Elem().Kind() != reflect.Slice {
		return errors.New("record: dest must be a pointer to a slice")
	}
	slice := dv.Elem()
	elemType := slice.Type().Elem()

	stmt := fmt.Sprintf("SELECT %s FROM %s", columnList(desc), quoteIdent(m.Table()))
	if where != "" {
		stmt += " WHERE " + where
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("record: select %s: %w", m.Table(), err)
	}
	defer rows.Close()

	for rows.Next() {
		ev := reflect.New(elemType).Elem()
		if err := scanRow(rows, desc, ev); err != nil {
			return err
		}
		slice = reflect.Append(slice, ev)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("record: select %s: %w", m.Table(), err)
	}
	dv.Elem().Set(slice)
	return nil
}

func (s *Store) describe(m Mappable) (*entity.Descriptor, error) {
	name := reflect.Indirect(reflect.ValueOf(m)).Type().Name()
	desc, ok := s.reflector.Reflect(name)
	if !ok {
		return nil, fmt.Errorf("record: entity %q is not registered", name)
	}
	return desc, nil
}

func columnList(desc *entity.Descriptor) string {
	cols := make([]string, len(desc.Fields))
	for i, f := range desc.Fields {
		cols[i] = quoteIdent(f.Name)
	}
	return strings.Join(cols, ", ")
}

// columnType maps an entity type string to a SQLite column type.
// Structured values (arrays, objects, unions) are stored as JSON text.
func columnType(typ string) string {
	switch strings.TrimPrefix(typ, "?") {
	case "int", "bool":
		return "INTEGER"
	case "float":
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func structValue(m Mappable) (reflect.Value, error) {
	rv := reflect.ValueOf(m)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("record: %T is not a struct", m)
	}
	return rv, nil
}

// fieldByColumn finds the struct field whose json tag (or lowercased
// name) matches the descriptor column name.
func fieldByColumn(rv reflect.Value, col string) reflect.Value {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		if strings.EqualFold(name, col) {
			return rv.Field(i)
		}
	}
	return reflect.Value{}
}

func toArg(fv reflect.Value) (any, error) {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			return nil, nil
		}
		fv = fv.Elem()
	}

	if t, ok := fv.Interface().(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), nil
	}

	switch fv.Kind() {
	case reflect.String:
		return fv.String(), nil
	case reflect.Bool:
		return fv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(fv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return fv.Float(), nil
	default:
		data, err := json.Marshal(fv.Interface())
		if err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		return string(data), nil
	}
}

// setScalar assigns a string column value to a scalar destination.
func setScalar(dst reflect.Value, raw string) error {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("record: parse bool: %w", err)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("record: parse int: %w", err)
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("record: parse uint: %w", err)
		}
		dst.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("record: parse float: %w", err)
		}
		dst.SetFloat(f)
	default:
		return fmt.Errorf("record: unsupported scalar kind %s", dst.Kind())
	}
	return nil
}

func scanRow(rows *sql.Rows, desc *entity.Descriptor, rv reflect.Value) error {
	targets := make([]any, len(desc.Fields))
	post := make([]func() error, 0, len(desc.Fields))

	for i, f := range desc.Fields {
		fv := fieldByColumn(rv, f.Name)
		if !fv.IsValid() || !fv.CanSet() {
			targets[i] = new(any)
			continue
		}

		if fv.Kind() == reflect.Pointer {
			// Nullable column: scan through a Null wrapper so SQL
			// NULL maps to a nil pointer.
			raw := new(sql.NullString)
			switch fv.Type().Elem().Kind() {
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
				reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
				reflect.Float32, reflect.Float64, reflect.Bool, reflect.String:
			default:
				targets[i] = new(any)
				continue
			}
			targets[i] = raw
			dst := fv
			post = append(post, func() error {
				if !raw.Valid {
					dst.Set(reflect.Zero(dst.Type()))
					return nil
				}
				p := reflect.New(dst.Type().Elem())
				if err := setScalar(p.Elem(), raw.String); err != nil {
					return err
				}
				dst.Set(p)
				return nil
			})
			continue
		}

		switch {
		case fv.Type() == reflect.TypeOf(time.Time{}):
			raw := new(sql.NullString)
			targets[i] = raw
			dst := fv
			post = append(post, func() error {
				if !raw.Valid || raw.String == "" {
					return nil
				}
				t, err := time.Parse(time.RFC3339Nano, raw.String)
				if err != nil {
					return fmt.Errorf("record: parse time: %w", err)
				}
				dst.Set(reflect.ValueOf(t))
				return nil
			})
		case fv.Kind() == reflect.Slice || fv.Kind() == reflect.Map || fv.Kind() == reflect.Struct:
			raw := new(sql.NullString)
			targets[i] = raw
			dst := fv
			post = append(post, func() error {
				if !raw.Valid || raw.String == "" {
					return nil
				}
				return json.Unmarshal([]byte(raw.String), dst.Addr().Interface())
			})
		default:
			targets[i] = fv.Addr().Interface()
		}
	}

	if err := rows.Scan(targets...); err != nil {
		return fmt.Errorf("record: scan: %w", err)
	}
	for _, fn := range post {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
