package heap

import (
	"bytes"
	"fmt"
	"sync"

	"minirel/pkg/dberrors"
	"minirel/pkg/storage"
	"minirel/pkg/tuple"
	"minirel/pkg/types"
)

// Page is a fixed-size, slotted page: a bitmap header (one bit per
// slot, set iff occupied) followed by a contiguous array of fixed-width
// tuple slots. Slot width is determined by the table's TupleDesc; the
// number of slots that fit is computed once per page, the classic
// SimpleDB layout.
type Page struct {
	mu       sync.RWMutex
	pid      *PageID
	desc     *tuple.TupleDesc
	numSlots int
	slots    []*tuple.Tuple // nil entry = empty slot
	dirtier  *storage.TransactionID
	oldData  []byte // before-image, snapshotted via SetBeforeImage
}

// NumSlots returns how many fixed-width tuple slots fit in one page of
// the given size for a schema of the given per-tuple byte width.
func NumSlots(pageSize, tupleSize int) int {
	if tupleSize <= 0 {
		return 0
	}
	// each slot costs tupleSize bytes plus one header bit.
	return (pageSize * 8) / (tupleSize*8 + 1)
}

func headerBytes(numSlots int) int {
	return (numSlots + 7) / 8
}

// NewEmptyPage constructs a fresh, all-empty page for pid.
func NewEmptyPage(pid *PageID, desc *tuple.TupleDesc) *Page {
	numSlots := NumSlots(storage.PageSize(), desc.Size())
	return &Page{
		pid:      pid,
		desc:     desc,
		numSlots: numSlots,
		slots:    make([]*tuple.Tuple, numSlots),
	}
}

// NewPage parses data (exactly storage.PageSize() bytes) into a Page.
func NewPage(pid *PageID, desc *tuple.TupleDesc, data []byte) (*Page, error) {
	if len(data) != storage.PageSize() {
		return nil, dberrors.NewDbError("NewPage", "HeapPage", fmt.Sprintf("expected %d bytes, got %d", storage.PageSize(), len(data)))
	}

	numSlots := NumSlots(storage.PageSize(), desc.Size())
	p := &Page{pid: pid, desc: desc, numSlots: numSlots, slots: make([]*tuple.Tuple, numSlots)}

	hdrLen := headerBytes(numSlots)
	header := data[:hdrLen]
	body := data[hdrLen:]
	tupleSize := desc.Size()

	for slot := 0; slot < numSlots; slot++ {
		if !slotOccupied(header, slot) {
			continue
		}
		start := slot * tupleSize
		t, err := decodeTuple(desc, body[start:start+tupleSize])
		if err != nil {
			return nil, dberrors.NewDbError("NewPage", "HeapPage", err.Error())
		}
		t.RecordID = tuple.NewRecordID(pid, slot)
		p.slots[slot] = t
	}

	p.oldData = append([]byte{}, data...)
	return p, nil
}

func slotOccupied(header []byte, slot int) bool {
	byteIdx, bitIdx := slot/8, slot%8
	if byteIdx >= len(header) {
		return false
	}
	return header[byteIdx]&(1<<bitIdx) != 0
}

func setSlotOccupied(header []byte, slot int, occupied bool) {
	byteIdx, bitIdx := slot/8, slot%8
	if occupied {
		header[byteIdx] |= 1 << bitIdx
	} else {
		header[byteIdx] &^= 1 << bitIdx
	}
}

func decodeTuple(desc *tuple.TupleDesc, data []byte) (*tuple.Tuple, error) {
	t := tuple.NewTuple(desc)
	offset := 0
	for i := 0; i < desc.NumFields(); i++ {
		switch desc.FieldType(i) {
		case types.IntType:
			v := int64(0)
			for b := 0; b < 8; b++ {
				v = v<<8 | int64(data[offset+b])
			}
			t.SetField(i, types.NewIntField(int(v)))
			offset += 8
		case types.StringType:
			length := int(data[offset])<<24 | int(data[offset+1])<<16 | int(data[offset+2])<<8 | int(data[offset+3])
			offset += 4
			s := string(data[offset : offset+length])
			offset += types.StringMaxSize
			t.SetField(i, types.NewStringField(s, types.StringMaxSize))
		default:
			return nil, fmt.Errorf("unsupported field type %v", desc.FieldType(i))
		}
	}
	return t, nil
}

func (p *Page) ID() tuple.PageID {
	return p.pid
}

// NumEmptySlots returns the count of unoccupied slots on this page.
func (p *Page) NumEmptySlots() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, t := range p.slots {
		if t == nil {
			n++
		}
	}
	return n
}

// InsertTuple places t in the first empty slot and assigns its
// RecordID. Fails with DbError if the page is full.
func (p *Page) InsertTuple(t *tuple.Tuple) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for slot, existing := range p.slots {
		if existing != nil {
			continue
		}
		t.RecordID = tuple.NewRecordID(p.pid, slot)
		p.slots[slot] = t
		return nil
	}
	return dberrors.NewDbError("InsertTuple", "HeapPage", "page full")
}

// DeleteTuple clears the slot t.RecordID points at. Fails with DbError
// if t carries no RecordID or that slot is not occupied; it does not
// check that the RecordID names this page or that the slot holds t
// itself.
func (p *Page) DeleteTuple(t *tuple.Tuple) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t.RecordID == nil {
		return dberrors.NewDbError("DeleteTuple", "HeapPage", "tuple has no RecordID")
	}
	slot := t.RecordID.SlotNum
	if slot < 0 || slot >= len(p.slots) || p.slots[slot] == nil {
		return dberrors.NewDbError("DeleteTuple", "HeapPage", "slot not occupied")
	}
	p.slots[slot] = nil
	return nil
}

func (p *Page) IsDirty() *storage.TransactionID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dirtier
}

func (p *Page) MarkDirty(dirty bool, tid *storage.TransactionID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dirty {
		p.dirtier = tid
	} else {
		p.dirtier = nil
	}
}

// PageData serializes the page back to its exact on-disk byte image.
func (p *Page) PageData() []byte {
	p.mu.RLock()
	defer p.mu.RUnlock()

	buf := make([]byte, storage.PageSize())
	hdrLen := headerBytes(p.numSlots)
	header := buf[:hdrLen]
	body := buf[hdrLen:]
	tupleSize := p.desc.Size()

	for slot, t := range p.slots {
		if t == nil {
			continue
		}
		setSlotOccupied(header, slot, true)
		encodeTuple(t, body[slot*tupleSize:(slot+1)*tupleSize])
	}
	return buf
}

func encodeTuple(t *tuple.Tuple, dst []byte) {
	var b bytes.Buffer
	for i := 0; i < t.TupleDesc().NumFields(); i++ {
		_ = t.Field(i).Serialize(&b)
	}
	copy(dst, b.Bytes())
}

// Iterator returns a fresh iterator over this page's occupied slots, in
// slot order.
func (p *Page) Iterator() tuple.TupleIterator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	tuples := make([]*tuple.Tuple, 0, len(p.slots))
	for _, t := range p.slots {
		if t != nil {
			tuples = append(tuples, t)
		}
	}
	return &PageIterator{tuples: tuples}
}

// BeforeImage returns a Page reconstructed from the byte image captured
// by the most recent SetBeforeImage (or by NewPage when the page was
// parsed from disk), or the page itself if no image was ever captured.
// The BufferPool's abort path does not use it; it discards the page.
func (p *Page) BeforeImage() storage.Page {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.oldData == nil {
		return p
	}
	before, err := NewPage(p.pid, p.desc, p.oldData)
	if err != nil {
		return p
	}
	return before
}

// SetBeforeImage snapshots the page's current on-disk image as the
// before-image a future abort would restore.
func (p *Page) SetBeforeImage() {
	data := p.PageData()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.oldData = data
}

// PageIterator is a standalone iterator over a fixed tuple slice
// snapshotted at construction, per the spec's "avoid inner-class
// iterators" design note.
type PageIterator struct {
	tuples []*tuple.Tuple
	idx    int
}

func (it *PageIterator) HasNext() bool {
	return it.idx < len(it.tuples)
}

func (it *PageIterator) Next() (*tuple.Tuple, error) {
	if !it.HasNext() {
		return nil, dberrors.NewNoSuchElement("PageIterator.Next", "exhausted")
	}
	t := it.tuples[it.idx]
	it.idx++
	return t, nil
}

func (it *PageIterator) Rewind() {
	it.idx = 0
}
