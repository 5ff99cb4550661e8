package serialize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"gonum.org/v1/gonum/mat"
)

// Value kind bytes of the compact binary map encoding.
const (
	kindNil byte = iota
	kindBool
	kindInt64
	kindUint64
	kindFloat64
	kindString
	kindFloat64Slice
	kindUint64Slice
	kindStringSlice
	kindMatrix
	kindObject
	kindObjectList
)

// encodeObject writes an object as field count followed by the ordered
// name/value pairs.
func encodeObject(obj Serializable) ([]byte, error) {
	buf := new(bytes.Buffer)
	fields := obj.Describe()
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(fields))); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := writeString(buf, f.Name); err != nil {
			return nil, err
		}
		if err := writeValue(buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return buf.Bytes(), nil
}

// decodeObject reads an object's fields and invokes the registered
// constructor with the decoded attribute mapping.
func decodeObject(tag TypeTag, r *bytes.Reader) (Serializable, error) {
	ctor, err := constructor(tag)
	if err != nil {
		return nil, err
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}

	attrs := make(map[string]any, count)
	for i := uint32(0); i < count; i++ {
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		value, err := readValue(r)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		attrs[name] = value
	}
	return ctor(attrs)
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteByte(kindNil)
		return nil
	case bool:
		buf.WriteByte(kindBool)
		if val {
			return buf.WriteByte(1)
		}
		return buf.WriteByte(0)
	case int64:
		buf.WriteByte(kindInt64)
		return binary.Write(buf, binary.LittleEndian, val)
	case uint64:
		buf.WriteByte(kindUint64)
		return binary.Write(buf, binary.LittleEndian, val)
	case float64:
		buf.WriteByte(kindFloat64)
		return binary.Write(buf, binary.LittleEndian, val)
	case string:
		buf.WriteByte(kindString)
		return writeString(buf, val)
	case []float64:
		buf.WriteByte(kindFloat64Slice)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(val))); err != nil {
			return err
		}
		return binary.Write(buf, binary.LittleEndian, val)
	case []uint64:
		buf.WriteByte(kindUint64Slice)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(val))); err != nil {
			return err
		}
		return binary.Write(buf, binary.LittleEndian, val)
	case []string:
		buf.WriteByte(kindStringSlice)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(val))); err != nil {
			return err
		}
		for _, s := range val {
			if err := writeString(buf, s); err != nil {
				return err
			}
		}
		return nil
	case *mat.Dense:
		if val == nil {
			buf.WriteByte(kindNil)
			return nil
		}
		buf.WriteByte(kindMatrix)
		return writeMatrix(buf, val)
	case Serializable:
		buf.WriteByte(kindObject)
		return writeNested(buf, val)
	case []Serializable:
		buf.WriteByte(kindObjectList)
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(val))); err != nil {
			return err
		}
		for _, obj := range val {
			if err := writeNested(buf, obj); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported value type %T", v)
}

func readValue(r *bytes.Reader) (any, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case kindNil:
		return nil, nil
	case kindBool:
		b, err := r.ReadByte()
		return b == 1, err
	case kindInt64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case kindUint64:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case kindFloat64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case kindString:
		return readString(r)
	case kindFloat64Slice:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]float64, n)
		return v, binary.Read(r, binary.LittleEndian, v)
	case kindUint64Slice:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]uint64, n)
		return v, binary.Read(r, binary.LittleEndian, v)
	case kindStringSlice:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]string, n)
		for i := range v {
			if v[i], err = readString(r); err != nil {
				return nil, err
			}
		}
		return v, nil
	case kindMatrix:
		return readMatrix(r)
	case kindObject:
		return readNested(r)
	case kindObjectList:
		n, err := readLen(r)
		if err != nil {
			return nil, err
		}
		v := make([]Serializable, n)
		for i := range v {
			if v[i], err = readNested(r); err != nil {
				return nil, err
			}
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown value kind %d", kind)
}

// writeNested embeds an object: its tag followed by its fields, no framing
// or compression of its own.
func writeNested(buf *bytes.Buffer, obj Serializable) error {
	if obj == nil {
		return fmt.Errorf("nil nested object")
	}
	buf.WriteByte(byte(obj.TypeTag()))
	payload, err := encodeObject(obj)
	if err != nil {
		return err
	}
	_, err = buf.Write(payload)
	return err
}

func readNested(r *bytes.Reader) (Serializable, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	return decodeObject(TypeTag(tagByte), r)
}

func writeMatrix(buf *bytes.Buffer, m *mat.Dense) error {
	rows, cols := m.Dims()
	if err := binary.Write(buf, binary.LittleEndian, uint32(rows)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(cols)); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		if err := binary.Write(buf, binary.LittleEndian, m.RawRowView(i)); err != nil {
			return err
		}
	}
	return nil
}

func readMatrix(r *bytes.Reader) (*mat.Dense, error) {
	rows, err := readLen(r)
	if err != nil {
		return nil, err
	}
	cols, err := readLen(r)
	if err != nil {
		return nil, err
	}
	data := make([]float64, rows*cols)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, data), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readLen(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func readLen(r *bytes.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, err
	}
	return int(n), nil
}
