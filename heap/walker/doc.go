// Package walker traverses a heap arena in address order.
//
// The Iterator visits every regular block between the prologue and the
// epilogue without consulting the free lists, so it can be used on a heap
// that is already suspected to be corrupt:
//
//	it := walker.NewIterator(data, layout)
//	for {
//	    b, err := it.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // inspect b
//	}
//
// Bitmap gives O(1) visited tracking keyed by block pointer, used by the
// free-list walks in heap/verify to detect cycles.
package walker
