package printer

import "encoding/json"

func (p *Printer) printJSON(info heapInfo) error {
	if info.Blocks == nil {
		info.Blocks = []blockInfo{}
	}
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
