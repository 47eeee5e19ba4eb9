package protocol

import "fmt"

// ValueKind identifies the wire type of a column or value.
type ValueKind uint8

const (
	Int8 ValueKind = iota + 1
	Float8
	Boolean
	Text
)

func (k ValueKind) String() string {
	switch k {
	case Int8:
		return "int8"
	case Float8:
		return "float8"
	case Boolean:
		return "boolean"
	case Text:
		return "text"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

type Column struct {
	Name string
	Kind ValueKind
}

// Value is a single nullable cell. Valid values hold an int64, float64, bool
// or string matching the column kind.
type Value struct {
	Valid bool
	Value any
}

// ResultSet is the raw row payload produced by query execution and sent after
// a PacketResponse type byte. Clients reshape it into a dataset.DataSet, the
// server never interprets it beyond encoding.
type ResultSet struct {
	Columns      []Column
	Rows         [][]Value
	RowsAffected uint64
}

const valueNull uint8 = 0

func (rs *ResultSet) marshal(e *encoder) {
	e.writeUint64(rs.RowsAffected)
	e.writeUint32(uint32(len(rs.Columns)))
	for _, c := range rs.Columns {
		e.writeString(c.Name)
		e.writeUint8(uint8(c.Kind))
	}
	e.writeUint32(uint32(len(rs.Rows)))
	for _, row := range rs.Rows {
		for _, v := range row {
			marshalValue(e, v)
		}
	}
}

func (rs *ResultSet) unmarshal(d *decoder) error {
	var err error
	if rs.RowsAffected, err = d.readUint64(); err != nil {
		return err
	}
	numColumns, err := d.readUint32()
	if err != nil {
		return err
	}
	rs.Columns = make([]Column, 0, numColumns)
	for i := uint32(0); i < numColumns; i++ {
		var c Column
		if c.Name, err = d.readString(); err != nil {
			return err
		}
		kind, err := d.readUint8()
		if err != nil {
			return err
		}
		c.Kind = ValueKind(kind)
		rs.Columns = append(rs.Columns, c)
	}
	numRows, err := d.readUint32()
	if err != nil {
		return err
	}
	rs.Rows = make([][]Value, 0, numRows)
	for i := uint32(0); i < numRows; i++ {
		row := make([]Value, numColumns)
		for j := range row {
			if row[j], err = unmarshalValue(d); err != nil {
				return err
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return nil
}

func marshalValue(e *encoder, v Value) {
	if !v.Valid {
		e.writeUint8(valueNull)
		return
	}
	switch value := v.Value.(type) {
	case int64:
		e.writeUint8(uint8(Int8))
		e.writeUint64(uint64(value))
	case float64:
		e.writeUint8(uint8(Float8))
		e.writeFloat64(value)
	case bool:
		e.writeUint8(uint8(Boolean))
		e.writeBool(value)
	case string:
		e.writeUint8(uint8(Text))
		e.writeString(value)
	default:
		// NULL out anything the wire format cannot carry rather than
		// desynchronizing the peer with a partial row.
		e.writeUint8(valueNull)
	}
}

func unmarshalValue(d *decoder) (Value, error) {
	kind, err := d.readUint8()
	if err != nil {
		return Value{}, err
	}
	if kind == valueNull {
		return Value{}, nil
	}
	switch ValueKind(kind) {
	case Int8:
		n, err := d.readUint64()
		if err != nil {
			return Value{}, err
		}
		return Value{Valid: true, Value: int64(n)}, nil
	case Float8:
		f, err := d.readFloat64()
		if err != nil {
			return Value{}, err
		}
		return Value{Valid: true, Value: f}, nil
	case Boolean:
		b, err := d.readBool()
		if err != nil {
			return Value{}, err
		}
		return Value{Valid: true, Value: b}, nil
	case Text:
		s, err := d.readString()
		if err != nil {
			return Value{}, err
		}
		return Value{Valid: true, Value: s}, nil
	}
	return Value{}, fmt.Errorf("%w: value kind %d", ErrBadPayload, kind)
}
