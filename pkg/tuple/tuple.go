package tuple

import (
	"minirel/pkg/types"
)

// RecordID identifies a tuple within a page by slot number. A Tuple not
// yet placed on a page carries a nil RecordID.
type RecordID struct {
	PageID  PageID
	SlotNum int
}

func NewRecordID(pid PageID, slotNum int) *RecordID {
	return &RecordID{PageID: pid, SlotNum: slotNum}
}

func (r *RecordID) Equals(other *RecordID) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.SlotNum == other.SlotNum && r.PageID != nil && other.PageID != nil && r.PageID.Equals(other.PageID)
}

// PageID is the identity of a page, defined here (rather than in
// package storage) so that RecordID can reference it without pkg/storage
// and pkg/tuple importing each other.
type PageID interface {
	TableID() int
	PageNo() int
	Equals(other PageID) bool
	HashCode() uint32
	String() string
}

// Tuple is a row: a fixed sequence of Field values matching a TupleDesc,
// plus the RecordID it was read from (nil if not yet placed on a page).
type Tuple struct {
	desc     *TupleDesc
	fields   []types.Field
	RecordID *RecordID
}

func NewTuple(desc *TupleDesc) *Tuple {
	return &Tuple{desc: desc, fields: make([]types.Field, desc.NumFields())}
}

func (t *Tuple) TupleDesc() *TupleDesc {
	return t.desc
}

func (t *Tuple) Field(i int) types.Field {
	return t.fields[i]
}

func (t *Tuple) SetField(i int, f types.Field) {
	t.fields[i] = f
}
