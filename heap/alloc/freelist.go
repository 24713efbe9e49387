package alloc

import "github.com/joshuapare/heapkit/heap/block"

// Free lists are doubly linked through the first two payload words of each
// free block and sorted by ascending address. The list head lives in the
// directory slot of the block's class.

// insertFree links b into the list of its class at its address-ordered
// position. b must carry its final size.
func (a *Allocator) insertFree(b block.Block) {
	class := a.table.ClassFor(b.Size())
	a.insert(class, a.insertionPoint(class, b.Ptr()), b)
}

// insertionPoint scans class from its head and returns the last member whose
// address is below ptr, or Nil when ptr becomes the new head.
func (a *Allocator) insertionPoint(class int, ptr Ptr) Ptr {
	buf := a.ar.Bytes()
	pred := Nil
	for p := a.layout.Head(buf, class); p != Nil && p < ptr; {
		pred = p
		p = block.At(buf, p, nil).Succ()
	}
	return pred
}

// insert links b into class directly after pred (Nil: at the head).
func (a *Allocator) insert(class int, pred Ptr, b block.Block) {
	buf := a.ar.Bytes()
	var succ Ptr
	if pred == Nil {
		succ = a.layout.Head(buf, class)
		a.layout.SetHead(buf, a.dt, class, b.Ptr())
	} else {
		pb := a.at(pred)
		succ = pb.Succ()
		pb.SetSucc(b.Ptr())
	}
	b.SetPred(pred)
	b.SetSucc(succ)
	if succ != Nil {
		a.at(succ).SetPred(b.Ptr())
	}
}

// remove unlinks b from the list of the class its current size maps to.
func (a *Allocator) remove(b block.Block) {
	pred, succ := b.Pred(), b.Succ()
	switch {
	case pred == Nil && succ == Nil:
		// sole member
		a.layout.SetHead(a.ar.Bytes(), a.dt, a.table.ClassFor(b.Size()), Nil)
	case pred == Nil:
		// head with successors
		a.layout.SetHead(a.ar.Bytes(), a.dt, a.table.ClassFor(b.Size()), succ)
		a.at(succ).SetPred(Nil)
	case succ == Nil:
		// tail
		a.at(pred).SetSucc(Nil)
	default:
		a.at(pred).SetSucc(succ)
		a.at(succ).SetPred(pred)
	}
}

// FreeList returns the members of one class list in list order.
func (a *Allocator) FreeList(class int) []Ptr {
	buf := a.ar.Bytes()
	var out []Ptr
	for p := a.layout.Head(buf, class); p != Nil; p = block.At(buf, p, nil).Succ() {
		out = append(out, p)
	}
	return out
}
