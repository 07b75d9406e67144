package pdfdoc

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// epochDate stands in for write-time dates when the source has none.
// pdfcpu always writes dates in this 23 byte form.
const epochDate = "D:19700101000000+00'00'"

var (
	trailerInfo = regexp.MustCompile(`/Info\s+(\d+)\s+0\s+R`)
	trailerID   = regexp.MustCompile(`/ID\s*\[\s*<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*\]`)
	infoDate    = regexp.MustCompile(`/(CreationDate|ModDate)\s*\((D:\d{14}[+-]\d{2}'\d{2}')\)`)
)

// stamp replaces the write-time file identifier and info dates pdfcpu puts
// into every file with values derived from the source and the page range,
// so the same input always produces the same bytes. Each replacement keeps
// the length of what it replaces, leaving the xref offsets valid.
// It relies on the plain (uncompressed) trailer NewConfiguration asks for.
func (d *Document) stamp(data []byte, start, end int) []byte {
	trailer := bytes.LastIndex(data, []byte("trailer"))
	if trailer < 0 {
		return data
	}

	if m := trailerID.FindSubmatchIndex(data[trailer:]); m != nil {
		id := d.fileID(start, end)
		for g := 1; g <= 2; g++ {
			from, to := trailer+m[2*g], trailer+m[2*g+1]
			copy(data[from:to], fill(id, to-from))
		}
	}

	m := trailerInfo.FindSubmatch(data[trailer:])
	if m == nil {
		return data
	}
	objStart := bytes.Index(data, []byte(fmt.Sprintf("\n%s 0 obj", m[1])))
	if objStart < 0 {
		return data
	}
	objEnd := bytes.Index(data[objStart:], []byte("endobj"))
	if objEnd < 0 {
		return data
	}
	obj := data[objStart : objStart+objEnd]

	for _, dm := range infoDate.FindAllSubmatchIndex(obj, -1) {
		key := string(obj[dm[2]:dm[3]])
		date := d.sourceDate(key)
		if len(date) == dm[5]-dm[4] {
			copy(obj[dm[4]:dm[5]], date)
		}
	}
	return data
}

// fileID derives a stable identifier from the source identity and the range.
func (d *Document) fileID(start, end int) string {
	h := md5.New()
	fmt.Fprintf(h, "%s|%d|%d-%d", d.ctx.ID.PDFString(), d.PageCount(), start, end)
	if d.ctx.ID == nil {
		// Sources without an /ID still differ by content size.
		fmt.Fprintf(h, "|%d", d.ctx.Read.ReadFileSize())
	}
	return hex.EncodeToString(h.Sum(nil))
}

// sourceDate returns the source document's own date for key in pdfcpu's
// date format, or epochDate.
func (d *Document) sourceDate(key string) string {
	if d.ctx.Info == nil {
		return epochDate
	}
	info, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil || info == nil {
		return epochDate
	}
	s := info.StringEntry(key)
	if s == nil {
		return epochDate
	}
	t, ok := types.DateTime(*s, true)
	if !ok {
		return epochDate
	}
	if ds := types.DateString(t); len(ds) == len(epochDate) {
		return ds
	}
	return epochDate
}

// fill repeats s to exactly n bytes.
func fill(s string, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = s[i%len(s)]
	}
	return out
}
